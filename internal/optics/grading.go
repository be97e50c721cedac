package optics

import (
	"fmt"
	"math"
	"strings"
)

type Schedule int

const (
	Power Schedule = iota
	Geometric
)

func ParseSchedule(s string) (Schedule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "power", "linear":
		return Power, nil
	case "geometric":
		return Geometric, nil
	}
	return Power, fmt.Errorf("unknown grading schedule %q", s)
}

// Grading moves the layer thicknesses of a periodic stack from their
// nominal values in the top period to Low in the bottom one.
type Grading struct {
	Schedule Schedule
	Exponent float64   // of Power; 0 means 1 (linear)
	Low      []float64 // per layer of the period [Å]; nil disables grading
}

func (g Grading) Enabled() bool {
	return g.Low != nil
}

// Thickness of the layer with the given nominal and low thickness in period j (0 = top) of n.
func (g Grading) Thickness(nominal, low float64, j, n int) float64 {
	if n < 2 {
		return nominal
	}
	f := float64(j) / float64(n-1)
	switch g.Schedule {
	case Geometric:
		return nominal * math.Pow(low/nominal, f)
	default:
		exponent := g.Exponent
		if exponent == 0 {
			exponent = 1
		}
		return nominal + (low-nominal)*math.Pow(f, exponent)
	}
}

// Expand repeats the period n times, top to bottom, with graded thicknesses.
func (g Grading) Expand(period []Layer, n int) ([]Layer, error) {
	if len(period) == 0 || n < 1 {
		return nil, fmt.Errorf("%w: %d layers per period, %d periods", ErrEmptyStack, len(period), n)
	}
	if g.Enabled() && len(g.Low) != len(period) {
		return nil, fmt.Errorf("grading has %d thicknesses for %d layers per period", len(g.Low), len(period))
	}
	for i, l := range period {
		if !(l.Thickness > 0) {
			return nil, fmt.Errorf("%w: layer %d of the period has thickness %g", ErrNonPositiveThickness, i, l.Thickness)
		}
		if g.Enabled() && !(g.Low[i] > 0) {
			return nil, fmt.Errorf("%w: graded layer %d ends at thickness %g", ErrNonPositiveThickness, i, g.Low[i])
		}
	}

	layers := make([]Layer, 0, len(period)*n)
	for j := range n {
		for i, l := range period {
			if g.Enabled() {
				l.Thickness = g.Thickness(l.Thickness, g.Low[i], j, n)
			}
			layers = append(layers, l)
		}
	}
	return layers, nil
}
