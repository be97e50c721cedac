package optics

import (
	"fmt"
	"math/cmplx"

	"github.com/wildstyl3r/xmat/internal/constants"
)

type Layer struct {
	Material  *Material
	Thickness float64 // [Å]
}

// Stack is ambient | layers (top to bottom) | substrate; nil media are vacuum.
// A stack without layers is a single Fresnel interface.
type Stack struct {
	media     []*Material // distinct non-vacuum media
	medium    []int       // per boundary medium index into media, -1 for vacuum; ambient first, substrate last
	thickness []float64   // per layer
}

func NewStack(ambient *Material, layers []Layer, substrate *Material) (*Stack, error) {
	st := &Stack{
		medium:    make([]int, 0, len(layers)+2),
		thickness: make([]float64, 0, len(layers)),
	}
	st.add(ambient)
	for i, l := range layers {
		if !(l.Thickness > 0) {
			return nil, fmt.Errorf("%w: layer %d has thickness %g", ErrNonPositiveThickness, i, l.Thickness)
		}
		st.add(l.Material)
		st.thickness = append(st.thickness, l.Thickness)
	}
	st.add(substrate)
	return st, nil
}

func (st *Stack) add(m *Material) {
	if m == nil {
		st.medium = append(st.medium, -1)
		return
	}
	for i := range st.media {
		if st.media[i] == m {
			st.medium = append(st.medium, i)
			return
		}
	}
	st.media = append(st.media, m)
	st.medium = append(st.medium, len(st.media)-1)
}

func (st *Stack) NumLayers() int {
	return len(st.thickness)
}

// TotalThickness of all layers [Å].
func (st *Stack) TotalThickness() (t float64) {
	for _, d := range st.thickness {
		t += d
	}
	return
}

// indices returns the conjugated refractive index of every medium, ambient first.
func (st *Stack) indices(energy float64) ([]complex128, error) {
	distinct := make([]complex128, len(st.media))
	for i, m := range st.media {
		n, err := m.RefractiveIndex(energy)
		if err != nil {
			return nil, err
		}
		distinct[i] = cmplx.Conj(n)
	}
	n := make([]complex128, len(st.medium))
	for j, i := range st.medium {
		if i < 0 {
			n[j] = 1
		} else {
			n[j] = distinct[i]
		}
	}
	return n, nil
}

// normalComponent is sqrt(n^2 - n0^2 cos^2 θ0) on the decaying branch (Im >= 0).
func normalComponent(n, n0 complex128, sin2 float64) complex128 {
	q := cmplx.Sqrt((n-n0)*(n+n0) + n0*n0*complex(sin2, 0))
	if imag(q) < 0 || (imag(q) == 0 && real(q) < 0) {
		q = -q
	}
	return q
}

func interfaceS(qi, qj complex128) (r, t complex128) {
	d := qi + qj
	return (qi - qj) / d, 2 * qi / d
}

func interfaceP(ni, nj, qi, qj complex128) (r, t complex128) {
	a := nj * nj * qi
	b := ni * ni * qj
	d := a + b
	return (a - b) / d, 2 * ni * nj * qi / d
}

// Reflection amplitudes (s, p) at the glancing angle θ0 in the ambient, sinTheta = sin θ0.
func (st *Stack) Reflection(energy, sinTheta float64) (complex128, complex128, error) {
	rs, rp, _, _, err := st.solve(energy, sinTheta)
	return rs, rp, err
}

// Transmission amplitudes (s, p) into the substrate.
func (st *Stack) Transmission(energy, sinTheta float64) (complex128, complex128, error) {
	_, _, ts, tp, err := st.solve(energy, sinTheta)
	return ts, tp, err
}

func (st *Stack) solve(energy, sinTheta float64) (rs, rp, ts, tp complex128, err error) {
	if !(sinTheta > 0 && sinTheta <= 1) {
		return 0, 0, 0, 0, fmt.Errorf("%w: sin θ = %g", ErrDegenerateGeometry, sinTheta)
	}
	n, err := st.indices(energy)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	k := energy / constants.CHBar
	sin2 := sinTheta * sinTheta
	q := make([]complex128, len(n))
	for j := range n {
		q[j] = normalComponent(n[j], n[0], sin2)
	}

	last := len(n) - 1
	rs, ts = interfaceS(q[last-1], q[last])
	rp, tp = interfaceP(n[last-1], n[last], q[last-1], q[last])
	for j := last - 1; j >= 1; j-- {
		phase := cmplx.Exp(complex(0, k*st.thickness[j-1]) * q[j])
		phase2 := phase * phase
		r, t := interfaceS(q[j-1], q[j])
		d := 1 + r*rs*phase2
		ts = t * ts * phase / d
		rs = (r + rs*phase2) / d

		r, t = interfaceP(n[j-1], n[j], q[j-1], q[j])
		d = 1 + r*rp*phase2
		tp = t * tp * phase / d
		rp = (r + rp*phase2) / d
	}
	return rs, rp, ts, tp, nil
}
