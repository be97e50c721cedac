package optics

import (
	"errors"
	"fmt"

	"github.com/wildstyl3r/xmat/internal/scattering"
)

var (
	ErrUnknownElement       = scattering.ErrUnknownElement
	ErrNoTabulatedData      = scattering.ErrNoTabulatedData
	ErrInvalidComposition   = errors.New("invalid composition")
	ErrDegenerateGeometry   = errors.New("degenerate geometry")
	ErrBelowBraggThreshold  = errors.New("energy below Bragg threshold")
	ErrEmptyStack           = errors.New("empty stack")
	ErrNonPositiveThickness = errors.New("non-positive thickness")
	ErrInvalidLattice       = errors.New("invalid lattice")
	ErrBatchShape           = errors.New("inputs must have length 1 or a common length")
)

// ElementError reports the failure of one element of a batch evaluated in strict mode.
type ElementError struct {
	Index int
	Err   error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("element %d: %v", e.Index, e.Err)
}

func (e *ElementError) Unwrap() error {
	return e.Err
}
