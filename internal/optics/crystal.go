package optics

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/wildstyl3r/xmat/internal/constants"
	"go.uber.org/zap"
)

type CrystalSpec struct {
	Name      string
	Hkl       [3]int
	D         float64 // lattice spacing of the reflection [Å]
	Cell      []Atom  // cubic unit cell
	Geometry  Geometry
	Thickness float64 // [Å], 0 is semi-infinite

	DebyeWallerScale float64 // in (0, 1], 1 when zero

	// Isotropic temperature factor [Å^2]. When zero and both temperatures
	// are set, it is derived per atom from the Debye model.
	B                float64
	DebyeTemperature float64 // [K]
	Temperature      float64 // [K]
}

// Crystal is a perfect cubic crystal prepared for one reflection.
type Crystal struct {
	*Material

	hkl       [3]int
	d         float64
	a         float64
	volume    float64
	cell      []Atom
	b         []float64 // per atom of cell
	geometry  Geometry
	thickness float64
	dwScale   float64
}

func NewCrystal(spec CrystalSpec, lookup Lookup, opts ...Option) (*Crystal, error) {
	if spec.Hkl == [3]int{} {
		return nil, fmt.Errorf("%w: zero Miller indices", ErrInvalidLattice)
	}
	if !(spec.D > 0) || math.IsInf(spec.D, 0) {
		return nil, fmt.Errorf("%w: d = %g", ErrInvalidLattice, spec.D)
	}
	if len(spec.Cell) == 0 {
		return nil, fmt.Errorf("%w: empty unit cell", ErrInvalidComposition)
	}
	if spec.Thickness < 0 || math.IsNaN(spec.Thickness) {
		return nil, fmt.Errorf("%w: crystal thickness %g", ErrNonPositiveThickness, spec.Thickness)
	}
	scale := spec.DebyeWallerScale
	if scale == 0 {
		scale = 1
	}
	if !(scale > 0 && scale <= 1) {
		return nil, fmt.Errorf("%w: Debye-Waller scale %g outside (0, 1]", ErrInvalidLattice, scale)
	}
	if spec.B < 0 {
		return nil, fmt.Errorf("%w: negative temperature factor %g", ErrInvalidLattice, spec.B)
	}

	h, k, l := float64(spec.Hkl[0]), float64(spec.Hkl[1]), float64(spec.Hkl[2])
	c := &Crystal{
		hkl:       spec.Hkl,
		d:         spec.D,
		a:         spec.D * math.Sqrt(h*h+k*k+l*l),
		cell:      append([]Atom(nil), spec.Cell...),
		geometry:  spec.Geometry,
		thickness: spec.Thickness,
		dwScale:   scale,
	}
	c.volume = c.a * c.a * c.a

	// cell contents as one formula unit
	var symbols []string
	var quantities []float64
	index := make(map[string]int)
	cellMass := 0.
	c.b = make([]float64, len(c.cell))
	for i, atom := range c.cell {
		if !(atom.occupancy() > 0) {
			return nil, fmt.Errorf("%w: occupancy %g of %s", ErrInvalidComposition, atom.Occupancy, atom.Element)
		}
		el, err := lookup.Element(atom.Element)
		if err != nil {
			return nil, fmt.Errorf("crystal %q: %w", spec.Name, err)
		}
		j, some := index[atom.Element]
		if !some {
			j = len(symbols)
			index[atom.Element] = j
			symbols = append(symbols, atom.Element)
			quantities = append(quantities, 0)
		}
		quantities[j] += atom.occupancy()
		cellMass += atom.occupancy() * el.Mass

		switch {
		case spec.B > 0:
			c.b[i] = spec.B
		case spec.DebyeTemperature > 0 && spec.Temperature > 0:
			c.b[i] = DebyeB(el.Mass, spec.DebyeTemperature, spec.Temperature)
		}
	}

	density := cellMass / (constants.Avogadro * c.volume * 1e-24)
	material, err := NewMaterial(MaterialSpec{
		Name:       spec.Name,
		Elements:   symbols,
		Quantities: quantities,
		Density:    density,
		Kind:       CrystalMedium,
	}, lookup, opts...)
	if err != nil {
		return nil, err
	}
	c.Material = material

	c.opts.logger.Debug("crystal created",
		zap.String("name", c.Name()),
		zap.Ints("hkl", c.hkl[:]),
		zap.Float64("d", c.d),
		zap.Float64("a", c.a),
		zap.Float64("density", density),
		zap.Stringer("geometry", c.geometry),
		zap.Float64("thickness", c.thickness))
	return c, nil
}

func (c *Crystal) Hkl() [3]int {
	return c.hkl
}

// D is the lattice spacing of the reflection [Å].
func (c *Crystal) D() float64 {
	return c.d
}

// LatticeConstant of the cubic cell [Å].
func (c *Crystal) LatticeConstant() float64 {
	return c.a
}

// Volume of the unit cell [Å^3].
func (c *Crystal) Volume() float64 {
	return c.volume
}

func (c *Crystal) Geometry() Geometry {
	return c.geometry
}

// Thickness [Å]; 0 is semi-infinite.
func (c *Crystal) Thickness() float64 {
	return c.thickness
}

// DebyeWaller returns the attenuation of the structure factor contribution of each cell atom.
func (c *Crystal) DebyeWaller() []float64 {
	s := 0.5 / c.d
	dw := make([]float64, len(c.b))
	for i := range c.b {
		dw[i] = c.dwScale * math.Exp(-c.b[i]*s*s)
	}
	return dw
}

// atomFactor is f0(q) + f1 - Z + i f2.
func (c *Crystal) atomFactor(symbol string, energy, q float64) (complex128, error) {
	el, err := c.lookup.Element(symbol)
	if err != nil {
		return 0, err
	}
	f, err := c.lookup.Factors(symbol, energy, q)
	if err != nil {
		return 0, err
	}
	return complex(f.F0+f.F1-float64(el.Z), f.F2), nil
}

// StructureFactors returns F0 and the structure factors of +hkl and -hkl.
// Thermal attenuation applies to Fh and Fhbar only.
func (c *Crystal) StructureFactors(energy float64) (f0, fh, fhbar complex128, err error) {
	if !(energy > 0) {
		return 0, 0, 0, fmt.Errorf("%w: energy %g eV", ErrNoTabulatedData, energy)
	}
	s := 0.5 / c.d
	forward := make(map[string]complex128)
	diffracted := make(map[string]complex128)
	dw := c.DebyeWaller()
	h := [3]float64{float64(c.hkl[0]), float64(c.hkl[1]), float64(c.hkl[2])}
	for i, atom := range c.cell {
		ff, some := forward[atom.Element]
		if !some {
			if ff, err = c.atomFactor(atom.Element, energy, 0); err != nil {
				return 0, 0, 0, err
			}
			forward[atom.Element] = ff
		}
		fd, some := diffracted[atom.Element]
		if !some {
			if fd, err = c.atomFactor(atom.Element, energy, s); err != nil {
				return 0, 0, 0, err
			}
			diffracted[atom.Element] = fd
		}

		occ := complex(atom.occupancy(), 0)
		phase := 2 * math.Pi * (h[0]*atom.Position[0] + h[1]*atom.Position[1] + h[2]*atom.Position[2])
		shift := cmplx.Rect(1, phase)
		att := complex(dw[i], 0)
		f0 += occ * ff
		fh += occ * att * fd * shift
		fhbar += occ * att * fd / shift
	}
	return f0, fh, fhbar, nil
}

// Susceptibilities χ = -r0 λ² F / (π V), in the n = 1 - δ - iβ convention.
func (c *Crystal) Susceptibilities(energy float64) (chi0, chih, chihbar complex128, err error) {
	f0, fh, fhbar, err := c.StructureFactors(energy)
	if err != nil {
		return 0, 0, 0, err
	}
	lambda := constants.CH / energy
	k := complex(-constants.R0*lambda*lambda/(math.Pi*c.volume), 0)
	return k * f0, k * fh, k * fhbar, nil
}

// Amplitude returns the s and p amplitudes of the crystal geometry for one
// incidence. gamma0 and gammaH are the direction cosines of the incident and
// exit rays against the outward surface normal, hns0 is the projection of
// the outward Bragg plane normal on the incident direction.
func (c *Crystal) Amplitude(energy, gamma0, gammaH, hns0 float64) (complex128, complex128, error) {
	if gamma0 == 0 || gammaH == 0 || math.IsNaN(gamma0) || math.IsNaN(gammaH) {
		return 0, 0, fmt.Errorf("%w: γ0 = %g, γh = %g", ErrDegenerateGeometry, gamma0, gammaH)
	}
	chi0, chih, chihbar, err := c.Susceptibilities(energy)
	if err != nil {
		return 0, 0, err
	}
	in := incidence{
		k:       energy / constants.CHBar,
		chi0:    cmplx.Conj(chi0),
		chih:    cmplx.Conj(chih),
		chihbar: cmplx.Conj(chihbar),
		b:       gamma0 / gammaH,
		gamma0:  math.Abs(gamma0),
	}
	ratio := constants.CH / energy / c.d
	in.alpha = ratio*ratio + 2*ratio*hns0

	s := c.assemble(in.solve(1))
	p := c.assemble(in.solve(1 - 2*hns0*hns0))
	return s, p, nil
}

func (c *Crystal) Amplitudes(ctx context.Context, energy, gamma0, gammaH, hns0 []float64) ([]complex128, []complex128, error) {
	b, err := NewCrystalBatch(c, energy, gamma0, gammaH, hns0, c.opts.strict)
	if err != nil {
		return nil, nil, err
	}
	s := make([]complex128, b.Len())
	p := make([]complex128, b.Len())
	if err := c.opts.kernel.Crystal(ctx, b, s, p); err != nil {
		return nil, nil, err
	}
	return s, p, nil
}
