package optics

import "math"

// Incidence holds the direction cosines of one crystal evaluation.
type Incidence struct {
	Gamma0 float64
	GammaH float64
	Hns0   float64
}

// BraggGeometry: surface normal along z, incident ray s0 = (cos(θ+α), -sin(θ+α))
// and exit ray sh = (cos(θ-α), sin(θ-α)) in the diffraction plane, Bragg
// planes tilted by the asymmetry α.
func BraggGeometry(theta, alpha float64) Incidence {
	return Incidence{
		Gamma0: -math.Sin(theta + alpha),
		GammaH: math.Sin(theta - alpha),
		Hns0:   -math.Sin(theta),
	}
}

// LaueGeometry: the same rays with the surface normal along -y.
func LaueGeometry(theta, alpha float64) Incidence {
	return Incidence{
		Gamma0: -math.Cos(theta + alpha),
		GammaH: -math.Cos(theta - alpha),
		Hns0:   -math.Sin(theta),
	}
}

// GeometryFor picks the Bragg or Laue convention of g.
func GeometryFor(g Geometry, theta, alpha float64) Incidence {
	if g.IsBragg() {
		return BraggGeometry(theta, alpha)
	}
	return LaueGeometry(theta, alpha)
}

// Scan converts glancing angles into broadcast inputs of Crystal.Amplitudes.
func Scan(g Geometry, theta []float64, alpha float64) (gamma0, gammaH, hns0 []float64) {
	gamma0 = make([]float64, len(theta))
	gammaH = make([]float64, len(theta))
	hns0 = make([]float64, len(theta))
	for i, t := range theta {
		in := GeometryFor(g, t, alpha)
		gamma0[i], gammaH[i], hns0[i] = in.Gamma0, in.GammaH, in.Hns0
	}
	return
}

// Asymmetry returns b = γ0/γh of a geometry at its Bragg angle.
func Asymmetry(g Geometry, thetaB, alpha float64) float64 {
	in := GeometryFor(g, thetaB, alpha)
	return in.Gamma0 / in.GammaH
}
