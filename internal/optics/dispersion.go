package optics

import (
	"math"
	"math/cmplx"
)

// incidence holds the polarization independent part of the two-beam problem.
// Susceptibilities are conjugated so that absorption means Im χ0 > 0.
type incidence struct {
	k                   float64 // vacuum wavenumber [1/Å]
	chi0, chih, chihbar complex128
	b                   float64 // asymmetry γ0/γh
	gamma0              float64 // |γ0|
	alpha               float64 // deviation from the Bragg condition
}

type branch int

const (
	// the roots differ in their imaginary parts, the larger one decays into the crystal
	absorbing branch = iota
	// the roots are real up to rounding, the smaller one in modulus is the weak wave
	nonAbsorbing
)

// waves are the two Bloch wave solutions for one polarization.
type waves struct {
	k      float64
	gamma0 float64
	b      float64
	branch branch
	u1, u2 complex128 // roots, u1 is the selected one
	x1, x2 complex128 // Dh/D0 ratios
	e1, e2 complex128 // wavevector corrections along the inward normal, in units of k

	// zero polarization factor: no diffracted wave, u1 = 0 is the refracted incident wave
	decoupled bool
}

// roots of u² + u·B - c = 0 without cancellation: q = -(B + s)/2 with Re(conj(B)·s) >= 0, then q and -c/q.
func roots(bb, c complex128) (complex128, complex128) {
	s := cmplx.Sqrt(bb*bb + 4*c)
	if real(cmplx.Conj(bb)*s) < 0 {
		s = -s
	}
	q := -(bb + s) / 2
	if q == 0 {
		return 0, 0
	}
	return q, -c / q
}

const branchTolerance = 1e-9

func selectBranch(ua, ub complex128) (u1, u2 complex128, tag branch) {
	scale := cmplx.Abs(ua) + cmplx.Abs(ub)
	if math.Abs(imag(ua)-imag(ub)) > branchTolerance*scale {
		if imag(ua) >= imag(ub) {
			return ua, ub, absorbing
		}
		return ub, ua, absorbing
	}
	if cmplx.Abs(ua) <= cmplx.Abs(ub) {
		return ua, ub, nonAbsorbing
	}
	return ub, ua, nonAbsorbing
}

// solve finds both Bloch waves for the polarization factor pol (1 for s, cos 2θ for p).
func (in incidence) solve(pol float64) waves {
	c := complex(pol*pol*in.b, 0) * in.chih * in.chihbar
	bb := complex(in.alpha*in.b, 0) + in.chi0*complex(1-in.b, 0)
	ua, ub := roots(bb, c)
	w := waves{k: in.k, gamma0: in.gamma0, b: in.b}
	g := complex(2*in.gamma0, 0)
	if pol == 0 {
		w.decoupled = true
		w.u1, w.u2 = 0, -bb
		w.e1, w.e2 = in.chi0/g, (in.chi0-bb)/g
		return w
	}
	w.u1, w.u2, w.branch = selectBranch(ua, ub)

	cx := complex(pol, 0) * in.chihbar
	w.x1, w.x2 = w.u1/cx, w.u2/cx
	w.e1, w.e2 = (w.u1+in.chi0)/g, (w.u2+in.chi0)/g
	return w
}

// propagation returns exp(i k ε t).
func (w waves) propagation(e complex128, t float64) complex128 {
	return cmplx.Exp(complex(0, w.k*t) * e)
}

// ratio is P1/P2 = exp(i k (u1 - u2) t / (2 γ0)), bounded by 1 on the absorbing branch.
func (w waves) ratio(t float64) complex128 {
	return cmplx.Exp(complex(0, w.k*t/(2*w.gamma0)) * (w.u1 - w.u2))
}

func (w waves) braggReflected(t float64) complex128 {
	if w.decoupled {
		return 0
	}
	var r complex128
	if t == 0 {
		r = w.x1
	} else {
		q := w.ratio(t)
		r = w.x1 * w.x2 * (1 - q) / (w.x2 - w.x1*q)
	}
	return r / complex(math.Sqrt(math.Abs(w.b)), 0)
}

func (w waves) braggTransmitted(t float64) complex128 {
	if t == 0 {
		return 0
	}
	if w.decoupled {
		return w.propagation(w.e1, t)
	}
	q := w.ratio(t)
	return w.propagation(w.e1, t) * (w.x2 - w.x1) / (w.x2 - w.x1*q)
}

func (w waves) laueReflected(t float64) complex128 {
	if t == 0 || w.decoupled {
		return 0
	}
	p1, p2 := w.propagation(w.e1, t), w.propagation(w.e2, t)
	r := w.x1 * w.x2 * (p1 - p2) / (w.x2 - w.x1)
	return r / complex(math.Sqrt(math.Abs(w.b)), 0)
}

func (w waves) laueTransmitted(t float64) complex128 {
	if t == 0 {
		return 0
	}
	if w.decoupled {
		return w.propagation(w.e1, t)
	}
	p1, p2 := w.propagation(w.e1, t), w.propagation(w.e2, t)
	return (w.x2*p1 - w.x1*p2) / (w.x2 - w.x1)
}

func (c *Crystal) assemble(w waves) complex128 {
	switch c.geometry {
	case BraggTransmitted:
		return w.braggTransmitted(c.thickness)
	case LaueReflected:
		return w.laueReflected(c.thickness)
	case LaueTransmitted:
		return w.laueTransmitted(c.thickness)
	default:
		return w.braggReflected(c.thickness)
	}
}
