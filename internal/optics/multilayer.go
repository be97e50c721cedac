package optics

import (
	"context"

	"go.uber.org/zap"
)

type MultilayerSpec struct {
	Ambient   *Material // nil for vacuum
	Period    []Layer   // top to bottom; a classic multilayer has two layers
	Periods   int
	Substrate *Material // nil for vacuum
	Grading   Grading
}

type Multilayer struct {
	layers []Layer
	stack  *Stack
	opts   options
}

func NewMultilayer(spec MultilayerSpec, opts ...Option) (*Multilayer, error) {
	layers, err := spec.Grading.Expand(spec.Period, spec.Periods)
	if err != nil {
		return nil, err
	}
	stack, err := NewStack(spec.Ambient, layers, spec.Substrate)
	if err != nil {
		return nil, err
	}
	ml := &Multilayer{
		layers: layers,
		stack:  stack,
		opts:   newOptions(opts),
	}
	ml.opts.logger.Debug("multilayer created",
		zap.Int("periods", spec.Periods),
		zap.Int("layers", len(layers)),
		zap.Bool("graded", spec.Grading.Enabled()),
		zap.Float64("total_thickness", stack.TotalThickness()))
	return ml, nil
}

// Layers of the expanded stack, top to bottom.
func (ml *Multilayer) Layers() []Layer {
	return append([]Layer(nil), ml.layers...)
}

func (ml *Multilayer) Stack() *Stack {
	return ml.stack
}

func (ml *Multilayer) Amplitude(energy, sinTheta float64) (complex128, complex128, error) {
	return ml.stack.Reflection(energy, sinTheta)
}

func (ml *Multilayer) Amplitudes(ctx context.Context, energy, sinTheta []float64) ([]complex128, []complex128, error) {
	b, err := NewStackBatch(ml.stack, energy, sinTheta, false, ml.opts.strict)
	if err != nil {
		return nil, nil, err
	}
	return runStack(ctx, ml.opts, b)
}

func (ml *Multilayer) Transmission(energy, sinTheta float64) (complex128, complex128, error) {
	return ml.stack.Transmission(energy, sinTheta)
}

func (ml *Multilayer) Transmissions(ctx context.Context, energy, sinTheta []float64) ([]complex128, []complex128, error) {
	b, err := NewStackBatch(ml.stack, energy, sinTheta, true, ml.opts.strict)
	if err != nil {
		return nil, nil, err
	}
	return runStack(ctx, ml.opts, b)
}
