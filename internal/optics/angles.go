package optics

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/wildstyl3r/xmat/internal/constants"
	"github.com/wildstyl3r/xmat/internal/utils"
)

// BraggAngle θB = asin(λ / 2d).
func (c *Crystal) BraggAngle(energy float64) (float64, error) {
	if !(energy > 0) {
		return math.NaN(), fmt.Errorf("%w: energy %g eV", ErrBelowBraggThreshold, energy)
	}
	sin := constants.CH / energy / (2 * c.d)
	if sin > 1 {
		return math.NaN(), fmt.Errorf("%w: λ/2d = %g at %g eV", ErrBelowBraggThreshold, sin, energy)
	}
	return math.Asin(sin), nil
}

func (c *Crystal) BraggAngles(ctx context.Context, energy []float64) ([]float64, error) {
	return scalars(ctx, c.opts, energy, c.BraggAngle, math.NaN())
}

// BraggOffset θB(energy) - θB(reference).
func (c *Crystal) BraggOffset(energy, reference float64) (float64, error) {
	theta, err := c.BraggAngle(energy)
	if err != nil {
		return math.NaN(), err
	}
	theta0, err := c.BraggAngle(reference)
	if err != nil {
		return math.NaN(), err
	}
	return theta - theta0, nil
}

// DthetaSymmetric is the refraction shift of the reflection maximum for the symmetric Bragg case.
func (c *Crystal) DthetaSymmetric(energy float64) (float64, error) {
	thetaB, err := c.BraggAngle(energy)
	if err != nil {
		return math.NaN(), err
	}
	chi0, _, _, err := c.Susceptibilities(energy)
	if err != nil {
		return math.NaN(), err
	}
	return -real(chi0) / math.Sin(2*thetaB), nil
}

// DthetaRegular is the first-order refraction shift for asymmetry alpha.
// It diverges at grazing incidence, θB + alpha -> 0.
func (c *Crystal) DthetaRegular(energy, alpha float64) (float64, error) {
	symmetric, err := c.DthetaSymmetric(energy)
	if err != nil {
		return math.NaN(), err
	}
	thetaB, _ := c.BraggAngle(energy)
	return symmetric * (1 + math.Sin(thetaB-alpha)/math.Sin(thetaB+alpha)) / 2, nil
}

const dthetaBracket = 0.1 // [rad]

// Dtheta is the exact refraction shift for asymmetry alpha: the glancing
// angle at which the refracted incident wave satisfies Bragg's law, minus θB.
// NaN when no solution exists within 0.1 rad above θB.
func (c *Crystal) Dtheta(energy, alpha float64) (float64, error) {
	thetaB, err := c.BraggAngle(energy)
	if err != nil {
		return math.NaN(), err
	}
	chi0, _, _, err := c.Susceptibilities(energy)
	if err != nil {
		return math.NaN(), err
	}
	target := constants.CH / energy / (2 * c.d)
	cosAlpha := math.Cos(alpha)
	g := func(theta float64) float64 {
		sinIn := math.Sin(theta + alpha)
		inside := real(cmplx.Sqrt(complex(sinIn*sinIn+real(chi0), 0)))
		return math.Sin(theta) + cosAlpha*(inside-sinIn) - target
	}

	hi := math.Min(thetaB+dthetaBracket, math.Pi/2)
	if g(hi) < 0 {
		return math.NaN(), nil
	}
	if g(thetaB) >= 0 {
		return 0, nil
	}
	lo, up := utils.BinarySearch(func(theta float64) bool { return g(theta) >= 0 }, thetaB, hi, 1e-15)
	return (lo+up)/2 - thetaB, nil
}

func (c *Crystal) Dthetas(ctx context.Context, energy []float64, alpha float64) ([]float64, error) {
	return scalars(ctx, c.opts, energy, func(e float64) (float64, error) {
		return c.Dtheta(e, alpha)
	}, math.NaN())
}

func polarizationFactor(pol Polarization, thetaB float64) float64 {
	if pol == P {
		return math.Cos(2 * thetaB)
	}
	return 1
}

// DarwinWidth is the full angular width of total reflection for asymmetry b = γ0/γh.
func (c *Crystal) DarwinWidth(energy, b float64, pol Polarization) (float64, error) {
	if b == 0 || math.IsNaN(b) {
		return math.NaN(), fmt.Errorf("%w: b = %g", ErrDegenerateGeometry, b)
	}
	thetaB, err := c.BraggAngle(energy)
	if err != nil {
		return math.NaN(), err
	}
	_, chih, chihbar, err := c.Susceptibilities(energy)
	if err != nil {
		return math.NaN(), err
	}
	C := math.Abs(polarizationFactor(pol, thetaB))
	return 2 * C * math.Sqrt(cmplx.Abs(chih*chihbar)) / (math.Sqrt(math.Abs(b)) * math.Sin(2*thetaB)), nil
}

// ExtinctionLength is the depth [Å] over which the wavefield amplitude falls
// by 1/e at the centre of total reflection in the symmetric Bragg case.
func (c *Crystal) ExtinctionLength(energy float64, pol Polarization) (float64, error) {
	thetaB, err := c.BraggAngle(energy)
	if err != nil {
		return math.NaN(), err
	}
	_, chih, chihbar, err := c.Susceptibilities(energy)
	if err != nil {
		return math.NaN(), err
	}
	C := math.Abs(polarizationFactor(pol, thetaB))
	lambda := constants.CH / energy
	return lambda * math.Sin(thetaB) / (math.Pi * C * math.Sqrt(cmplx.Abs(chih*chihbar))), nil
}
