package scattering

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementBySymbol(t *testing.T) {
	si, err := ElementBySymbol("Si")
	require.NoError(t, err)
	assert.Equal(t, 14, si.Z)
	assert.InDelta(t, 28.0855, si.Mass, 1e-9)
	// Cromer-Mann sum reproduces Z to within the fit accuracy
	assert.InDelta(t, 14, si.FormFactor(0), 0.01)
	assert.Less(t, si.FormFactor(0.5), si.FormFactor(0.1))

	_, err = ElementBySymbol("Xx")
	assert.ErrorIs(t, err, ErrUnknownElement)
}

func TestTablesInterpolation(t *testing.T) {
	tabs := NewTables()
	require.NoError(t, tabs.Add("Si", []float64{8000, 10000}, []float64{14.28, 14.23}, []float64{0.34, 0.226}))

	f, err := tabs.Factors("Si", 9000, 0)
	require.NoError(t, err)
	assert.InDelta(t, 14.255, f.F1, 1e-12)
	assert.InDelta(t, 0.283, f.F2, 1e-12)
	assert.Equal(t, 14., f.F0)

	f, err = tabs.Factors("Si", 9000, 0.16)
	require.NoError(t, err)
	assert.InDelta(t, 10.5, f.F0, 0.5)

	_, err = tabs.Factors("Si", 12000, 0)
	assert.ErrorIs(t, err, ErrNoTabulatedData)
	_, err = tabs.Factors("Ge", 9000, 0)
	assert.ErrorIs(t, err, ErrNoTabulatedData)
	_, err = tabs.Factors("Qq", 9000, 0)
	assert.ErrorIs(t, err, ErrUnknownElement)

	lo, hi, some := tabs.Range("Si")
	assert.True(t, some)
	assert.Equal(t, 8000., lo)
	assert.Equal(t, 10000., hi)
}

func TestTablesAddValidation(t *testing.T) {
	tabs := NewTables()
	assert.Error(t, tabs.Add("Si", []float64{1, 2}, []float64{1}, []float64{1, 2}))
	assert.Error(t, tabs.Add("Si", []float64{1}, []float64{1}, []float64{1}))
	assert.Error(t, tabs.Add("Si", []float64{2, 1}, []float64{1, 1}, []float64{1, 1}))
	assert.ErrorIs(t, tabs.Add("Zz", []float64{1, 2}, []float64{1, 1}, []float64{1, 1}), ErrUnknownElement)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	nff := "E(eV)\tf1\tf2\n10.0\t-9999.\t1.0\n30.0\t2.5\t1.1\n30.0\t2.6\t1.1\n100.0\t3.0\t0.5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "si.nff"), []byte(nff), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.nff"), []byte(nff), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.nff"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "w.txt"), []byte(nff), 0600))

	tabs := NewTables()
	loaded, err := tabs.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "Si"}, loaded)

	lo, hi, some := tabs.Range("Si")
	require.True(t, some)
	assert.Equal(t, 30., lo)
	assert.Equal(t, 100., hi)
	_, _, some = tabs.Range("W")
	assert.False(t, some)
}

type countingLookup struct {
	calls atomic.Int64
	Lookup
}

func (c *countingLookup) Factors(symbol string, energy, q float64) (Factors, error) {
	c.calls.Add(1)
	return c.Lookup.Factors(symbol, energy, q)
}

func TestCacheMemoizes(t *testing.T) {
	tabs := NewTables()
	require.NoError(t, tabs.Add("Si", []float64{8000, 10000}, []float64{14.28, 14.23}, []float64{0.34, 0.226}))
	counting := &countingLookup{Lookup: tabs}
	cache := NewCache(counting)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f, err := cache.Factors("Si", 9000, 0)
			assert.NoError(t, err)
			assert.InDelta(t, 14.255, f.F1, 1e-12)
		}()
	}
	wg.Wait()

	_, err := cache.Factors("Si", 9000, 0)
	require.NoError(t, err)
	assert.LessOrEqual(t, counting.calls.Load(), int64(32))
	assert.Equal(t, 1, cache.Len())
	before := counting.calls.Load()
	_, _ = cache.Factors("Si", 9000, 0)
	assert.Equal(t, before, counting.calls.Load())

	_, err = cache.Factors("Si", 1, 0)
	assert.True(t, errors.Is(err, ErrNoTabulatedData))
	assert.Equal(t, 1, cache.Len())
}
