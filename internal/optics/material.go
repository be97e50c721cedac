// Package optics computes X-ray optical constants and the complex s/p
// amplitudes of mirrors, slabs, multilayers and perfect crystals.
//
// Energies are in eV, lengths in Å, angles in radians, densities in g/cm³
// and absorption coefficients in 1/cm. Returned amplitudes use the
// exp(-iωt) convention, where absorbing media have Im(n) > 0 internally.
package optics

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/wildstyl3r/xmat/internal/constants"
	"github.com/wildstyl3r/xmat/internal/scattering"
	"go.uber.org/zap"
)

type Lookup = scattering.Lookup

type Kind int

const (
	Bulk Kind = iota
	ThinMirror
	MultilayerConstituent
	CrystalMedium
)

var kindNames = map[Kind]string{
	Bulk:                  "bulk",
	ThinMirror:            "thin mirror",
	MultilayerConstituent: "multilayer constituent",
	CrystalMedium:         "crystal",
}

func (k Kind) String() string {
	if name, some := kindNames[k]; some {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts the names of String, case-insensitive, with '_' or '-' in place of spaces. Empty is Bulk.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimSpace(s)))
	if s == "" {
		return Bulk, nil
	}
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return Bulk, fmt.Errorf("unknown material kind %q", s)
}

type MaterialSpec struct {
	Name       string
	Elements   []string
	Quantities []float64 // per element, all 1 when nil
	Density    float64   // [g/cm^3]
	Kind       Kind
	Thickness  float64 // [Å], required for ThinMirror
}

type Material struct {
	name       string
	kind       Kind
	thickness  float64
	density    float64
	symbols    []string
	quantities []float64
	molarMass  float64

	lookup Lookup
	opts   options
	stack  *Stack
}

func NewMaterial(spec MaterialSpec, lookup Lookup, opts ...Option) (*Material, error) {
	if len(spec.Elements) == 0 {
		return nil, fmt.Errorf("%w: %q has no elements", ErrInvalidComposition, spec.Name)
	}
	quantities := spec.Quantities
	if quantities == nil {
		quantities = make([]float64, len(spec.Elements))
		for i := range quantities {
			quantities[i] = 1
		}
	}
	if len(quantities) != len(spec.Elements) {
		return nil, fmt.Errorf("%w: %q has %d elements and %d quantities", ErrInvalidComposition, spec.Name, len(spec.Elements), len(quantities))
	}
	if !(spec.Density > 0) {
		return nil, fmt.Errorf("%w: %q has density %g", ErrInvalidComposition, spec.Name, spec.Density)
	}
	if spec.Kind == ThinMirror && !(spec.Thickness > 0) {
		return nil, fmt.Errorf("%w: thin mirror %q has thickness %g", ErrNonPositiveThickness, spec.Name, spec.Thickness)
	}

	m := &Material{
		name:       spec.Name,
		kind:       spec.Kind,
		thickness:  spec.Thickness,
		density:    spec.Density,
		symbols:    append([]string(nil), spec.Elements...),
		quantities: append([]float64(nil), quantities...),
		lookup:     lookup,
		opts:       newOptions(opts),
	}
	for i, symbol := range m.symbols {
		if !(m.quantities[i] > 0) {
			return nil, fmt.Errorf("%w: %q has quantity %g of %s", ErrInvalidComposition, spec.Name, m.quantities[i], symbol)
		}
		el, err := lookup.Element(symbol)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", spec.Name, err)
		}
		m.molarMass += m.quantities[i] * el.Mass
	}
	if m.name == "" {
		m.name = strings.Join(m.symbols, "")
	}

	var err error
	if m.kind == ThinMirror {
		m.stack, err = NewStack(nil, []Layer{{Material: m, Thickness: m.thickness}}, nil)
	} else {
		m.stack, err = NewStack(nil, nil, m)
	}
	if err != nil {
		return nil, err
	}

	m.opts.logger.Debug("material created",
		zap.String("name", m.name),
		zap.Stringer("kind", m.kind),
		zap.Float64("molar_mass", m.molarMass),
		zap.Float64("density", m.density))
	return m, nil
}

func (m *Material) Name() string {
	return m.name
}

func (m *Material) Kind() Kind {
	return m.kind
}

func (m *Material) Thickness() float64 {
	return m.thickness
}

func (m *Material) Density() float64 {
	return m.density
}

// MolarMass of one formula unit [g/mol].
func (m *Material) MolarMass() float64 {
	return m.molarMass
}

// NumberDensity of formula units [1/Å^3].
func (m *Material) NumberDensity() float64 {
	return m.density * constants.Avogadro / m.molarMass * 1e-24
}

func (m *Material) Lookup() Lookup {
	return m.lookup
}

// forwardFactor is sum of q_i (f1_i + i f2_i) over the formula unit.
func (m *Material) forwardFactor(energy float64) (complex128, error) {
	if !(energy > 0) {
		return 0, fmt.Errorf("%w: energy %g eV", ErrNoTabulatedData, energy)
	}
	var f complex128
	for i, symbol := range m.symbols {
		factors, err := m.lookup.Factors(symbol, energy, 0)
		if err != nil {
			return 0, err
		}
		f += complex(m.quantities[i], 0) * complex(factors.F1, factors.F2)
	}
	return f, nil
}

// RefractiveIndex n = 1 - δ - iβ.
func (m *Material) RefractiveIndex(energy float64) (complex128, error) {
	f, err := m.forwardFactor(energy)
	if err != nil {
		return 0, err
	}
	lambda := constants.CH / energy
	c := constants.R0 * lambda * lambda * m.NumberDensity() / (2 * math.Pi)
	return 1 - complex(c, 0)*f, nil
}

// AbsorptionCoefficient μ0 [1/cm].
func (m *Material) AbsorptionCoefficient(energy float64) (float64, error) {
	n, err := m.RefractiveIndex(energy)
	if err != nil {
		return 0, err
	}
	k := energy / constants.CHBar
	return 2 * k * math.Abs(imag(n)) * constants.AngstromPerCm, nil
}

func (m *Material) RefractiveIndices(ctx context.Context, energy []float64) ([]complex128, error) {
	return scalars(ctx, m.opts, energy, m.RefractiveIndex, nanAmplitude)
}

func (m *Material) AbsorptionCoefficients(ctx context.Context, energy []float64) ([]float64, error) {
	return scalars(ctx, m.opts, energy, m.AbsorptionCoefficient, math.NaN())
}

// Stack is the mirror (bulk) or free-standing slab (thin mirror) this material forms in vacuum.
func (m *Material) Stack() *Stack {
	return m.stack
}

// Amplitude is the reflection amplitude of the mirror or slab at glancing angle with sine sinTheta.
func (m *Material) Amplitude(energy, sinTheta float64) (complex128, complex128, error) {
	return m.stack.Reflection(energy, sinTheta)
}

func (m *Material) Amplitudes(ctx context.Context, energy, sinTheta []float64) ([]complex128, []complex128, error) {
	b, err := NewStackBatch(m.stack, energy, sinTheta, false, m.opts.strict)
	if err != nil {
		return nil, nil, err
	}
	return runStack(ctx, m.opts, b)
}

// SlabTransmission is the amplitude transmitted through the slab (or into the bulk).
func (m *Material) SlabTransmission(energy, sinTheta float64) (complex128, complex128, error) {
	return m.stack.Transmission(energy, sinTheta)
}

func (m *Material) SlabTransmissions(ctx context.Context, energy, sinTheta []float64) ([]complex128, []complex128, error) {
	b, err := NewStackBatch(m.stack, energy, sinTheta, true, m.opts.strict)
	if err != nil {
		return nil, nil, err
	}
	return runStack(ctx, m.opts, b)
}
