// Package scattering provides atomic scattering factors: the element
// registry, the tabulated anomalous factors f1/f2 and a memoizing cache.
package scattering

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownElement  = errors.New("unknown element")
	ErrNoTabulatedData = errors.New("no tabulated scattering data")
)

// Factors of a single atom. F1 includes Z, F0 is the Thomson form factor at the requested momentum transfer.
type Factors struct {
	F0 float64
	F1 float64
	F2 float64
}

// Lookup resolves elements and their scattering factors. Implementations must be safe for concurrent use.
type Lookup interface {
	Element(symbol string) (Element, error)
	// Factors at energy [eV] and momentum transfer q = sin(theta)/lambda [1/Å].
	Factors(symbol string, energy, q float64) (Factors, error)
}

// formFactor evaluates f0 with f0(0) = Z for elements without Cromer-Mann coefficients.
func formFactor(el Element, q float64) (float64, error) {
	if !el.HasFormFactor() {
		if q == 0 {
			return float64(el.Z), nil
		}
		return 0, fmt.Errorf("%w: no form factor coefficients for %s", ErrNoTabulatedData, el.Symbol)
	}
	if q == 0 {
		return float64(el.Z), nil
	}
	return el.FormFactor(q), nil
}
