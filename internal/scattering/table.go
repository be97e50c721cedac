package scattering

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/wildstyl3r/xmat/internal/utils"
	"gonum.org/v1/gonum/interp"
)

// Henke tables mark missing f1 values with -9999.
const missingValue = -9000.

type table struct {
	min, max float64
	f1, f2   interp.PiecewiseLinear
}

// Tables is a Lookup backed by per-element energy tables of f1 and f2,
// interpolated linearly. Energies outside a table yield ErrNoTabulatedData.
type Tables struct {
	mu     sync.RWMutex
	tables map[string]*table
}

func NewTables() *Tables {
	return &Tables{tables: make(map[string]*table)}
}

// Add registers (or replaces) the table of an element. Energies must be strictly increasing.
func (t *Tables) Add(symbol string, energy, f1, f2 []float64) error {
	if _, err := ElementBySymbol(symbol); err != nil {
		return err
	}
	if len(energy) != len(f1) || len(energy) != len(f2) {
		return fmt.Errorf("table of %s: column lengths differ (%d, %d, %d)", symbol, len(energy), len(f1), len(f2))
	}
	if len(energy) < 2 {
		return fmt.Errorf("table of %s: at least two rows required", symbol)
	}
	for i := 1; i < len(energy); i++ {
		if !(energy[i] > energy[i-1]) {
			return fmt.Errorf("table of %s: energies not strictly increasing at row %d", symbol, i)
		}
	}
	tab := &table{min: energy[0], max: energy[len(energy)-1]}
	if err := tab.f1.Fit(energy, f1); err != nil {
		return fmt.Errorf("table of %s: %w", symbol, err)
	}
	if err := tab.f2.Fit(energy, f2); err != nil {
		return fmt.Errorf("table of %s: %w", symbol, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.tables[symbol] = tab
	return nil
}

// LoadNFF reads a Henke three-column file (E[eV] f1 f2). Rows with missing f1 are dropped.
func (t *Tables) LoadNFF(symbol, path string) error {
	rows, err := utils.ReadFloatColumns(path, 3)
	if err != nil {
		return fmt.Errorf("table of %s: %w", symbol, err)
	}
	energy := make([]float64, 0, len(rows))
	f1 := make([]float64, 0, len(rows))
	f2 := make([]float64, 0, len(rows))
	for _, row := range rows {
		if row[1] < missingValue {
			continue
		}
		if len(energy) > 0 && row[0] <= energy[len(energy)-1] {
			// Henke files repeat edge energies
			continue
		}
		energy = append(energy, row[0])
		f1 = append(f1, row[1])
		f2 = append(f2, row[2])
	}
	return t.Add(symbol, energy, f1, f2)
}

// LoadDir loads every *.nff file of dir; the element symbol is taken from the file name ("si.nff" -> "Si").
// Files naming no known element are skipped. The loaded symbols are returned in natural order.
func (t *Tables) LoadDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".nff") {
			names = append(names, e.Name())
		}
	}
	utils.NaturalStrings(names)

	var loaded []string
	for _, name := range names {
		symbol := symbolFromName(utils.GetFilename(name))
		if _, err := ElementBySymbol(symbol); err != nil {
			continue
		}
		if err := t.LoadNFF(symbol, filepath.Join(dir, name)); err != nil {
			return loaded, err
		}
		loaded = append(loaded, symbol)
	}
	return loaded, nil
}

func symbolFromName(name string) string {
	r := []rune(strings.ToLower(name))
	if len(r) == 0 {
		return ""
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// Range returns the tabulated energy interval of an element.
func (t *Tables) Range(symbol string) (float64, float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tab, some := t.tables[symbol]
	if !some {
		return 0, 0, false
	}
	return tab.min, tab.max, true
}

func (t *Tables) Element(symbol string) (Element, error) {
	return ElementBySymbol(symbol)
}

func (t *Tables) Factors(symbol string, energy, q float64) (Factors, error) {
	el, err := ElementBySymbol(symbol)
	if err != nil {
		return Factors{}, err
	}
	t.mu.RLock()
	tab, some := t.tables[symbol]
	t.mu.RUnlock()
	if !some {
		return Factors{}, fmt.Errorf("%w: no table for %s", ErrNoTabulatedData, symbol)
	}
	if !(energy >= tab.min && energy <= tab.max) {
		return Factors{}, fmt.Errorf("%w: %s at %g eV outside [%g, %g]", ErrNoTabulatedData, symbol, energy, tab.min, tab.max)
	}
	f0, err := formFactor(el, q)
	if err != nil {
		return Factors{}, err
	}
	return Factors{
		F0: f0,
		F1: tab.f1.Predict(energy),
		F2: tab.f2.Predict(energy),
	}, nil
}
