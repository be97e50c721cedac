package optics

import (
	"math"

	"github.com/wildstyl3r/xmat/internal/constants"
	"gonum.org/v1/gonum/integrate/quad"
)

// debyePhi is the Debye function (1/x) ∫_0^x t/(e^t - 1) dt.
func debyePhi(x float64) float64 {
	if x == 0 {
		return 1
	}
	integrand := func(t float64) float64 {
		if t == 0 {
			return 1
		}
		return t / math.Expm1(t)
	}
	return quad.Fixed(integrand, 0, x, 64, nil, 0) / x
}

// DebyeB returns the isotropic temperature factor B [Å^2] of an atom with
// the given molar mass [g/mol] in a Debye solid at temperature [K].
func DebyeB(mass, debyeTemperature, temperature float64) float64 {
	m := mass * constants.AtomicMassUnit
	base := 6 * constants.Planck * constants.Planck / (m * constants.KBolzmann * debyeTemperature)
	thermal := 0.
	if temperature > 0 {
		x := debyeTemperature / temperature
		thermal = debyePhi(x) / x
	}
	return base * (thermal + 0.25) * constants.AngstromSquarePerMeterSquare
}

const (
	siliconReferenceA           = 5.431020511 // [Å]
	siliconReferenceTemperature = 295.65      // [K]
	SiliconDebyeTemperature     = 543.        // [K]
)

// siliconExpansion is the linear thermal expansion coefficient of Si [1/K] (Okada & Tokumaru).
func siliconExpansion(t float64) float64 {
	return (3.725*(1-math.Exp(-5.88e-3*(t-124))) + 5.548e-4*t) * 1e-6
}

// SiliconLatticeConstant a(T) [Å].
func SiliconLatticeConstant(temperature float64) float64 {
	var strain float64
	switch {
	case temperature == siliconReferenceTemperature:
		return siliconReferenceA
	case temperature > siliconReferenceTemperature:
		strain = quad.Fixed(siliconExpansion, siliconReferenceTemperature, temperature, 32, nil, 0)
	default:
		strain = -quad.Fixed(siliconExpansion, temperature, siliconReferenceTemperature, 32, nil, 0)
	}
	return siliconReferenceA * math.Exp(strain)
}

// NewSilicon is a diamond Si crystal with the lattice spacing and Debye-Waller factor of the given temperature [K].
func NewSilicon(hkl [3]int, temperature float64, geometry Geometry, thickness float64, lookup Lookup, opts ...Option) (*Crystal, error) {
	norm := math.Sqrt(float64(hkl[0]*hkl[0] + hkl[1]*hkl[1] + hkl[2]*hkl[2]))
	return NewCrystal(CrystalSpec{
		Name:             "Si",
		Hkl:              hkl,
		D:                SiliconLatticeConstant(temperature) / norm,
		Cell:             Diamond("Si"),
		Geometry:         geometry,
		Thickness:        thickness,
		DebyeTemperature: SiliconDebyeTemperature,
		Temperature:      temperature,
	}, lookup, opts...)
}
