package optics

import "go.uber.org/zap"

type options struct {
	strict bool
	kernel Kernel
	logger *zap.Logger
}

type Option func(*options)

// WithStrict makes batch operations fail on the first failing element instead of yielding NaN for it.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithKernel selects the batch evaluator, Serial by default.
func WithKernel(k Kernel) Option {
	return func(o *options) {
		if k != nil {
			o.kernel = k
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		kernel: Serial{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
