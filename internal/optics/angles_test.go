package optics

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBraggAngle(t *testing.T) {
	c := testSi111(t, testLookup(t, false), BraggReflected, 0)
	thetaB, err := c.BraggAngle(siE)
	require.NoError(t, err)
	assert.InDelta(t, 0.199012, thetaB, 1e-5)

	_, err = c.BraggAngle(1500)
	assert.ErrorIs(t, err, ErrBelowBraggThreshold)
	_, err = c.BraggAngle(0)
	assert.ErrorIs(t, err, ErrBelowBraggThreshold)

	angles, err := c.BraggAngles(context.Background(), []float64{siE, 1500, 2 * siE})
	require.NoError(t, err)
	assert.Equal(t, thetaB, angles[0])
	assert.True(t, math.IsNaN(angles[1]))
	assert.Less(t, angles[2], angles[0])

	offset, err := c.BraggOffset(siE, siE)
	require.NoError(t, err)
	assert.Zero(t, offset)
	offset, err = c.BraggOffset(siE+100, siE)
	require.NoError(t, err)
	assert.Less(t, offset, 0.)
	_, err = c.BraggOffset(siE, 1000)
	assert.ErrorIs(t, err, ErrBelowBraggThreshold)
}

func TestDthetaSymmetric(t *testing.T) {
	c := testSi111(t, testLookup(t, false), BraggReflected, 0)
	symmetric, err := c.DthetaSymmetric(siE)
	require.NoError(t, err)
	assert.InEpsilon(t, 2.528e-5, symmetric, 1e-2)

	regular, err := c.DthetaRegular(siE, 0)
	require.NoError(t, err)
	assert.Equal(t, symmetric, regular)

	exact, err := c.Dtheta(siE, 0)
	require.NoError(t, err)
	assert.InEpsilon(t, symmetric, exact, 1e-3)
}

func TestDthetaAsymmetric(t *testing.T) {
	c := testSi111(t, testLookup(t, false), BraggReflected, 0)
	for _, alpha := range []float64{-0.1, 0.1} {
		regular, err := c.DthetaRegular(siE, alpha)
		require.NoError(t, err)
		exact, err := c.Dtheta(siE, alpha)
		require.NoError(t, err)
		assert.InEpsilon(t, regular, exact, 1e-2, "α = %g", alpha)
	}
	// the shift grows as the incident ray turns grazing
	moderate, _ := c.Dtheta(siE, -0.1)
	symmetric, _ := c.Dtheta(siE, 0)
	assert.Greater(t, moderate, symmetric)
}

func TestDthetaGrazing(t *testing.T) {
	c := testSi111(t, testLookup(t, false), BraggReflected, 0)
	thetaB, err := c.BraggAngle(siE)
	require.NoError(t, err)
	alpha := 1e-4 - thetaB

	regular, err := c.DthetaRegular(siE, alpha)
	require.NoError(t, err)
	exact, err := c.Dtheta(siE, alpha)
	require.NoError(t, err)

	// first order expansion blows up, the exact shift stays near the critical angle
	assert.InDelta(t, 0.049, regular, 1e-3)
	assert.InDelta(t, 3.03e-3, exact, 5e-5)
	assert.Greater(t, regular, 10*exact)

	shifts, err := c.Dthetas(context.Background(), []float64{siE, 1500}, 0)
	require.NoError(t, err)
	assert.InEpsilon(t, 2.528e-5, shifts[0], 1e-2)
	assert.True(t, math.IsNaN(shifts[1]))
}

func TestDarwinWidth(t *testing.T) {
	c := testSi111(t, testLookup(t, false), BraggReflected, 0)
	thetaB, err := c.BraggAngle(siE)
	require.NoError(t, err)

	s, err := c.DarwinWidth(siE, -1, S)
	require.NoError(t, err)
	assert.InEpsilon(t, 2.705e-5, s, 1e-2)
	p, err := c.DarwinWidth(siE, -1, P)
	require.NoError(t, err)
	assert.InEpsilon(t, s*math.Abs(math.Cos(2*thetaB)), p, 1e-12)
	asymmetric, err := c.DarwinWidth(siE, -4, S)
	require.NoError(t, err)
	assert.InEpsilon(t, s/2, asymmetric, 1e-12)

	_, err = c.DarwinWidth(siE, 0, S)
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
	_, err = c.DarwinWidth(1500, -1, S)
	assert.ErrorIs(t, err, ErrBelowBraggThreshold)
}

func TestDarwinWidthMatchesPlateau(t *testing.T) {
	c := testSi111(t, testLookup(t, true), BraggReflected, 0)
	width, err := c.DarwinWidth(siE, Asymmetry(BraggReflected, 0.2, 0), S)
	require.NoError(t, err)

	step := 0.25e-6
	_, s, _ := rockingScan(t, c, -100e-6, 200e-6, 1201, 0)
	plateau := 0
	for _, r := range s {
		if r > 1-1e-9 {
			plateau++
		}
	}
	assert.InDelta(t, width, float64(plateau)*step, 2*step)
}

func TestExtinctionLength(t *testing.T) {
	c := testSi111(t, testLookup(t, false), BraggReflected, 0)
	thetaB, err := c.BraggAngle(siE)
	require.NoError(t, err)
	s, err := c.ExtinctionLength(siE, S)
	require.NoError(t, err)
	assert.InEpsilon(t, 14880, s, 1e-2)
	p, err := c.ExtinctionLength(siE, P)
	require.NoError(t, err)
	assert.InEpsilon(t, s/math.Abs(math.Cos(2*thetaB)), p, 1e-12)
}

func TestGeometryHelpers(t *testing.T) {
	theta := 0.3
	in := BraggGeometry(theta, 0)
	assert.Equal(t, -math.Sin(theta), in.Gamma0)
	assert.Equal(t, math.Sin(theta), in.GammaH)
	assert.Equal(t, -1., Asymmetry(BraggReflected, theta, 0))
	assert.Equal(t, 1., Asymmetry(LaueTransmitted, theta, 0))
	assert.Less(t, math.Abs(Asymmetry(BraggReflected, theta, -0.1)), 1.)

	in = LaueGeometry(theta, 0.05)
	assert.Equal(t, -math.Cos(theta+0.05), in.Gamma0)
	assert.Equal(t, -math.Cos(theta-0.05), in.GammaH)
	assert.Equal(t, -math.Sin(theta), in.Hns0)

	gamma0, gammaH, hns0 := Scan(LaueReflected, []float64{0.1, 0.2}, 0)
	assert.Len(t, gamma0, 2)
	assert.Len(t, gammaH, 2)
	assert.Equal(t, -math.Sin(0.2), hns0[1])
	assert.Equal(t, -math.Cos(0.2), gamma0[1])
}
