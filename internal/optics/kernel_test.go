package optics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wildstyl3r/xmat/internal/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestKernelsAgree(t *testing.T) {
	lookup := testLookup(t, false)
	ctx := context.Background()
	thetaB, err := testSi111(t, lookup, BraggReflected, 0).BraggAngle(siE)
	require.NoError(t, err)
	theta := utils.Linspace(thetaB-1e-4, thetaB+2e-4, 1000)

	kernels := []Kernel{Parallel{}, Parallel{Workers: 3, ChunkSize: 7}, Parallel{Workers: 1, ChunkSize: 1000}}
	for _, g := range []Geometry{BraggReflected, BraggTransmitted, LaueReflected, LaueTransmitted} {
		gamma0, gammaH, hns0 := Scan(g, theta, 0.05)
		serial := testSi111(t, lookup, g, 2e5)
		wantS, wantP, err := serial.Amplitudes(ctx, []float64{siE}, gamma0, gammaH, hns0)
		require.NoError(t, err)
		for _, k := range kernels {
			parallel := testSi111(t, lookup, g, 2e5, WithKernel(k))
			s, p, err := parallel.Amplitudes(ctx, []float64{siE}, gamma0, gammaH, hns0)
			require.NoError(t, err)
			assert.Equal(t, wantS, s, "%v %+v", g, k)
			assert.Equal(t, wantP, p, "%v %+v", g, k)
		}
	}

	ml := siW(t, false, Grading{})
	_, sin := scanDegrees(0.2, 3, 777)
	wantS, wantP, err := ml.Amplitudes(ctx, []float64{8050}, sin)
	require.NoError(t, err)
	for _, k := range kernels {
		ml.opts.kernel = k
		s, p, err := ml.Amplitudes(ctx, []float64{8050}, sin)
		require.NoError(t, err)
		assert.Equal(t, wantS, s)
		assert.Equal(t, wantP, p)
	}
}

func TestParallelStrict(t *testing.T) {
	lookup := testLookup(t, false)
	c := testSi111(t, lookup, BraggReflected, 0, WithStrict(true), WithKernel(Parallel{Workers: 4, ChunkSize: 5}))
	gamma0 := make([]float64, 100)
	for i := range gamma0 {
		gamma0[i] = -0.2
	}
	gamma0[42] = 0
	_, _, err := c.Amplitudes(context.Background(), []float64{siE}, gamma0, []float64{0.2}, []float64{-0.2})
	var ee *ElementError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 42, ee.Index)
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
}

func TestKernelCancellation(t *testing.T) {
	lookup := testLookup(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, k := range []Kernel{Serial{}, Parallel{Workers: 2}} {
		c := testSi111(t, lookup, BraggReflected, 0, WithKernel(k))
		_, _, err := c.Amplitudes(ctx, []float64{siE}, make([]float64, 10), []float64{0.2}, []float64{-0.2})
		assert.ErrorIs(t, err, context.Canceled)

		_, err = c.AbsorptionCoefficients(ctx, []float64{siE})
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestBroadcast(t *testing.T) {
	n, err := broadcastLen([]float64{1}, []float64{1, 2, 3}, []float64{4})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	_, err = broadcastLen([]float64{1, 2}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrBatchShape)
	_, err = broadcastLen([]float64{1}, nil)
	assert.ErrorIs(t, err, ErrBatchShape)

	assert.Equal(t, 5., at([]float64{5}, 7))
	assert.Equal(t, 2., at([]float64{1, 2}, 1))
}

func TestConstructorsLog(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	lookup := testLookup(t, false)

	si, err := NewMaterial(MaterialSpec{Elements: []string{"Si"}, Density: 2.33}, lookup, WithLogger(logger))
	require.NoError(t, err)
	_, err = NewMultilayer(MultilayerSpec{
		Period:    []Layer{{Material: si, Thickness: 30}},
		Periods:   2,
		Substrate: si,
	}, WithLogger(logger))
	require.NoError(t, err)
	testSi111(t, lookup, LaueReflected, 1e4, WithLogger(logger))

	// the crystal medium is a material of its own
	assert.Equal(t, 2, logs.FilterMessage("material created").Len())
	assert.Equal(t, 1, logs.FilterMessage("multilayer created").Len())
	crystal := logs.FilterMessage("crystal created").All()
	require.Len(t, crystal, 1)
	assert.Equal(t, "Laue reflected", crystal[0].ContextMap()["geometry"])
}
