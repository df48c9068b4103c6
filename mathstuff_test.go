package abcalc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalCDF(t *testing.T) {
	testCases := []struct {
		x        float64
		expected float64
	}{
		{0, 0.5},
		{1.959963984540054, 0.975},
		{-1.959963984540054, 0.025},
		{1.6448536269514722, 0.95},
		{math.Inf(1), 1},
		{math.Inf(-1), 0},
	}

	for _, tc := range testCases {
		result := NormalCDF(tc.x)
		assert.InDelta(t, tc.expected, result, 1e-9, "FAIL: x=%v", tc.x)
	}
}

func TestInvNormalCDF(t *testing.T) {
	assert.InDelta(t, 1.959964, InvNormalCDF(0.975), 1e-6)
	assert.InDelta(t, 1.644854, InvNormalCDF(0.95), 1e-6)
	assert.InDelta(t, 0.841621, InvNormalCDF(0.80), 1e-6)
	assert.Equal(t, 0.0, InvNormalCDF(0.5))
	assert.True(t, math.IsInf(InvNormalCDF(0), -1))
	assert.True(t, math.IsInf(InvNormalCDF(1), 1))
	assert.True(t, math.IsNaN(InvNormalCDF(-0.1)))
	assert.True(t, math.IsNaN(InvNormalCDF(1.1)))
	assert.True(t, math.IsNaN(InvNormalCDF(math.NaN())))

	for _, p := range []float64{0.001, 0.1, 0.3, 0.7, 0.9, 0.999} {
		assert.InDelta(t, p, NormalCDF(InvNormalCDF(p)), 1e-12, "round trip p=%v", p)
	}
}

func TestLogBeta(t *testing.T) {
	// B(1,1)=1, B(2,3)=1/12, B(0.5,0.5)=π
	assert.InDelta(t, 0.0, LogBeta(1, 1), 1e-12)
	assert.InDelta(t, math.Log(1.0/12), LogBeta(2, 3), 1e-12)
	assert.InDelta(t, math.Log(math.Pi), LogBeta(0.5, 0.5), 1e-12)
	// symmetric
	assert.InDelta(t, LogBeta(8, 42), LogBeta(42, 8), 1e-12)
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-1e-17))
	assert.Equal(t, 1.0, clamp01(1+1e-12))
	assert.Equal(t, 0.25, clamp01(0.25))
	assert.Equal(t, 0.0, clamp01(math.NaN()))
}

func TestExpGuarded(t *testing.T) {
	assert.InDelta(t, math.E, expGuarded(1), 1e-12)
	assert.True(t, math.IsInf(expGuarded(1e6), 1))
	assert.Equal(t, 0.0, expGuarded(-1e6))
	assert.Equal(t, 0.0, expGuarded(math.NaN()))
	assert.True(t, math.IsInf(expGuarded(math.Inf(1)), 1))
}

func TestRelativeDelta(t *testing.T) {
	testCases := []struct {
		a, b     float64
		expected float64
	}{
		{0.13, 0.10, 0.3},
		{0.10, 0.10, 0},
		{0, 0, 0},
		{0.05, 0.10, -0.5},
		{math.Inf(1), math.Inf(1), 0},
		{math.Inf(-1), math.Inf(-1), 0},
	}
	for _, tc := range testCases {
		assert.InDelta(t, tc.expected, relativeDelta(tc.a, tc.b), 1e-12, "a=%v b=%v", tc.a, tc.b)
	}
	assert.True(t, math.IsNaN(relativeDelta(math.NaN(), 1)))
	assert.True(t, math.IsNaN(relativeDelta(1, math.NaN())))

	huge := relativeDelta(0.01, 0)
	assert.False(t, math.IsInf(huge, 0), "zero denominator must stay finite")
	assert.Greater(t, huge, 1e6)
}

func TestStatistics(t *testing.T) {
	testCases := []struct {
		data     []float64
		expected struct {
			mean     float64
			variance float64
			stddev   float64
		}
	}{
		{[]float64{}, struct{ mean, variance, stddev float64 }{0, -1, -1}},
		{[]float64{1}, struct{ mean, variance, stddev float64 }{1, 0, 0}},
		{[]float64{1, 2, 3}, struct{ mean, variance, stddev float64 }{2, 2 / 3.0, math.Sqrt(2 / 3.0)}},
		{[]float64{1, 2, 3, 4}, struct{ mean, variance, stddev float64 }{2.5, 1.25, math.Sqrt(1.25)}},
		{[]float64{1, 1, 1, 1}, struct{ mean, variance, stddev float64 }{1, 0, 0}},
		{[]float64{1.5, 2.5, 3.5}, struct{ mean, variance, stddev float64 }{2.5, 2 / 3.0, math.Sqrt(2 / 3.0)}},
	}

	for _, tc := range testCases {
		mean, variance, stddev := Statistics(tc.data)
		assert.True(t, mean == tc.expected.mean && variance == tc.expected.variance && stddev == tc.expected.stddev,
			"FAIL: data=%v, expected=(%v, %v, %v), got=(%v, %v, %v)\n", tc.data, tc.expected.mean, tc.expected.variance, tc.expected.stddev, mean, variance, stddev)
	}
}

func TestFloatsEqualWithTolerance(t *testing.T) {
	testCases := []struct {
		f1, f2, tol float64
		expected    bool
	}{
		{100, 100, 0, true},
		{100, 101, 1, true},
		{100, 102, 1, false},
		{-100, -101, 1, true},
		{0, 0.0001, 1, false},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, FloatsEqualWithTolerance(tc.f1, tc.f2, tc.tol), "f1=%v f2=%v tol=%v", tc.f1, tc.f2, tc.tol)
	}
}
