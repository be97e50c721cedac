package optics

import (
	"context"
	"fmt"
)

// broadcastLen returns the common length of inputs whose lengths are 1 or n.
func broadcastLen(inputs ...[]float64) (int, error) {
	n := 0
	for _, in := range inputs {
		if len(in) == 0 {
			return 0, fmt.Errorf("%w: empty input", ErrBatchShape)
		}
		n = max(n, len(in))
	}
	for _, in := range inputs {
		if len(in) != 1 && len(in) != n {
			return 0, fmt.Errorf("%w: length %d against %d", ErrBatchShape, len(in), n)
		}
	}
	return n, nil
}

func at(x []float64, i int) float64 {
	if len(x) == 1 {
		return x[0]
	}
	return x[i]
}

// CrystalBatch is a broadcast set of crystal amplitude evaluations.
type CrystalBatch struct {
	Crystal *Crystal
	Energy  []float64
	Gamma0  []float64
	GammaH  []float64
	Hns0    []float64
	Strict  bool

	n int
}

func NewCrystalBatch(c *Crystal, energy, gamma0, gammaH, hns0 []float64, strict bool) (*CrystalBatch, error) {
	n, err := broadcastLen(energy, gamma0, gammaH, hns0)
	if err != nil {
		return nil, err
	}
	return &CrystalBatch{Crystal: c, Energy: energy, Gamma0: gamma0, GammaH: gammaH, Hns0: hns0, Strict: strict, n: n}, nil
}

func (b *CrystalBatch) Len() int {
	return b.n
}

func (b *CrystalBatch) Eval(i int) (complex128, complex128, error) {
	return b.Crystal.Amplitude(at(b.Energy, i), at(b.Gamma0, i), at(b.GammaH, i), at(b.Hns0, i))
}

// StackBatch is a broadcast set of stack reflectivity (or transmission) evaluations.
type StackBatch struct {
	Stack        *Stack
	Energy       []float64
	SinTheta     []float64
	Transmission bool
	Strict       bool

	n int
}

func NewStackBatch(st *Stack, energy, sinTheta []float64, transmission, strict bool) (*StackBatch, error) {
	n, err := broadcastLen(energy, sinTheta)
	if err != nil {
		return nil, err
	}
	return &StackBatch{Stack: st, Energy: energy, SinTheta: sinTheta, Transmission: transmission, Strict: strict, n: n}, nil
}

func (b *StackBatch) Len() int {
	return b.n
}

func (b *StackBatch) Eval(i int) (complex128, complex128, error) {
	e, sin := at(b.Energy, i), at(b.SinTheta, i)
	if b.Transmission {
		return b.Stack.Transmission(e, sin)
	}
	return b.Stack.Reflection(e, sin)
}

// scalars applies f to every energy with the NaN/strict policy of o.
func scalars[T any](ctx context.Context, o options, energy []float64, f func(float64) (T, error), nan T) ([]T, error) {
	r := make([]T, len(energy))
	for i, e := range energy {
		if i%pollEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		v, err := f(e)
		if err != nil {
			if o.strict {
				return nil, &ElementError{Index: i, Err: err}
			}
			v = nan
		}
		r[i] = v
	}
	return r, nil
}

func runStack(ctx context.Context, o options, b *StackBatch) ([]complex128, []complex128, error) {
	s := make([]complex128, b.Len())
	p := make([]complex128, b.Len())
	if err := o.kernel.Stack(ctx, b, s, p); err != nil {
		return nil, nil, err
	}
	return s, p, nil
}
