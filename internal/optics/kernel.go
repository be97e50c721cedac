package optics

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Kernel evaluates batches of amplitudes into s and p, which have the batch length.
// Every implementation must produce the same values as Serial.
type Kernel interface {
	Crystal(ctx context.Context, b *CrystalBatch, s, p []complex128) error
	Stack(ctx context.Context, b *StackBatch, s, p []complex128) error
}

type batch interface {
	Len() int
	Eval(i int) (s, p complex128, err error)
}

var nanAmplitude = complex(math.NaN(), math.NaN())

// context is polled once per this many elements
const pollEvery = 256

func evalRange(ctx context.Context, b batch, strict bool, from, to int, s, p []complex128) error {
	for i := from; i < to; i++ {
		if (i-from)%pollEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		si, pi, err := b.Eval(i)
		if err != nil {
			if strict {
				return &ElementError{Index: i, Err: err}
			}
			si, pi = nanAmplitude, nanAmplitude
		}
		s[i], p[i] = si, pi
	}
	return nil
}

type Serial struct{}

func (Serial) Crystal(ctx context.Context, b *CrystalBatch, s, p []complex128) error {
	return evalRange(ctx, b, b.Strict, 0, b.Len(), s, p)
}

func (Serial) Stack(ctx context.Context, b *StackBatch, s, p []complex128) error {
	return evalRange(ctx, b, b.Strict, 0, b.Len(), s, p)
}

// Parallel splits a batch into chunks evaluated by a bounded pool of goroutines.
type Parallel struct {
	Workers   int // GOMAXPROCS when not positive
	ChunkSize int // 256 when not positive
}

func (k Parallel) Crystal(ctx context.Context, b *CrystalBatch, s, p []complex128) error {
	return k.run(ctx, b, b.Strict, s, p)
}

func (k Parallel) Stack(ctx context.Context, b *StackBatch, s, p []complex128) error {
	return k.run(ctx, b, b.Strict, s, p)
}

func (k Parallel) run(ctx context.Context, b batch, strict bool, s, p []complex128) error {
	n := b.Len()
	chunk := k.ChunkSize
	if chunk <= 0 {
		chunk = 256
	}
	workers := k.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for from := 0; from < n; from += chunk {
		to := min(from+chunk, n)
		g.Go(func() error {
			return evalRange(ctx, b, strict, from, to, s, p)
		})
	}
	return g.Wait()
}
