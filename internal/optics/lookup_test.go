package optics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wildstyl3r/xmat/internal/scattering"
)

type tabulated struct {
	energy, f1, f2 []float64
}

// coarse Henke f1/f2 excerpts, enough for linear interpolation in the 5-20 keV window
var testTables = map[string]tabulated{
	"Si": {
		energy: []float64{5000, 8000, 10000, 15000, 20000},
		f1:     []float64{14.42, 14.28, 14.23, 14.14, 14.10},
		f2:     []float64{0.84, 0.34, 0.226, 0.097, 0.055},
	},
	"W": {
		energy: []float64{6000, 8000, 9000},
		f1:     []float64{70.0, 68.0, 66.6},
		f2:     []float64{9.4, 5.98, 4.87},
	},
	"C": {
		energy: []float64{5000, 8000, 10000, 20000},
		f1:     []float64{6.01, 6.0, 6.0, 6.0},
		f2:     []float64{0.038, 0.0093, 0.0047, 0.0006},
	},
}

func testLookup(t *testing.T, lossless bool) Lookup {
	t.Helper()
	tabs := scattering.NewTables()
	for symbol, tab := range testTables {
		f2 := tab.f2
		if lossless {
			f2 = make([]float64, len(tab.f2))
		}
		require.NoError(t, tabs.Add(symbol, tab.energy, tab.f1, f2))
	}
	return scattering.NewCache(tabs)
}

func testMaterial(t *testing.T, lookup Lookup, symbol string, density float64) *Material {
	t.Helper()
	m, err := NewMaterial(MaterialSpec{Elements: []string{symbol}, Density: density}, lookup)
	require.NoError(t, err)
	return m
}

func testSi111(t *testing.T, lookup Lookup, geometry Geometry, thickness float64, opts ...Option) *Crystal {
	t.Helper()
	c, err := NewCrystal(CrystalSpec{
		Name:      "Si",
		Hkl:       [3]int{1, 1, 1},
		D:         3.13562,
		Cell:      Diamond("Si"),
		Geometry:  geometry,
		Thickness: thickness,
	}, lookup, opts...)
	require.NoError(t, err)
	return c
}

func maxOf(x []float64) (m float64, at int) {
	m = math.Inf(-1)
	for i, v := range x {
		if v > m {
			m, at = v, i
		}
	}
	return
}

func moduli(z []complex128) []float64 {
	r := make([]float64, len(z))
	for i, v := range z {
		r[i] = real(v)*real(v) + imag(v)*imag(v)
	}
	return r
}
