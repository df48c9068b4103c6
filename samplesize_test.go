package abcalc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func baseSizing() SizingParams {
	return SizingParams{
		ConfidenceLevel:         95,
		Power:                   80,
		BaselineRate:            0.10,
		MinimumDetectableEffect: 0.20,
		EffectType:              Relative,
		NumVariants:             1,
		WeeklyTraffic:           2000,
	}
}

func TestSampleSizeStandardCase(t *testing.T) {
	res, err := SampleSize(baseSizing())
	require.NoError(t, err)

	assert.InDelta(t, 1.960, res.ZAlpha, 5e-4)
	assert.InDelta(t, 0.842, res.ZBeta, 5e-4)
	assert.InDelta(t, 0.05, res.AdjustedAlpha, 1e-12)
	assert.InDelta(t, 0.12, res.TargetRate, 1e-12)
	// (1.96·sqrt(2·0.11·0.89) + 0.8416·sqrt(0.09+0.1056))² / 0.02² ≈ 3841
	assert.InDelta(t, 3841, res.SampleSizePerArm, 2)
	assert.Equal(t, 2, res.Arms)
	assert.Equal(t, res.SampleSizePerArm*2, res.TotalSampleSize)
	assert.Equal(t, (res.TotalSampleSize+1999)/2000, res.EstimatedWeeks)
}

func TestSampleSizeTableMatchesAnalytic(t *testing.T) {
	p := baseSizing()
	analytic, err := SampleSize(p)
	require.NoError(t, err)

	p.ZMethod = ZTable
	table, err := SampleSize(p)
	require.NoError(t, err)

	assert.Equal(t, 1.960, table.ZAlpha)
	assert.Equal(t, 0.842, table.ZBeta)
	assert.True(t, FloatsEqualWithTolerance(float64(analytic.SampleSizePerArm), float64(table.SampleSizePerArm), 0.5),
		"analytic %d vs table %d", analytic.SampleSizePerArm, table.SampleSizePerArm)
}

func TestLookupZNearest(t *testing.T) {
	testCases := []struct {
		level    float64
		expected float64
	}{
		{95, 1.960},
		{94, 1.960},
		{96.5, 2.241},
		{99.95, 3.291},
		{10, 1.282},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, lookupZ(confidenceZTable, tc.level), "level %v", tc.level)
	}
	assert.Equal(t, 0.842, lookupZ(powerZTable, 81))
	assert.Equal(t, 1.282, lookupZ(powerZTable, 90))
}

func TestSampleSizeBonferroni(t *testing.T) {
	p := baseSizing()
	one, err := SampleSize(p)
	require.NoError(t, err)

	p.NumVariants = 2
	two, err := SampleSize(p)
	require.NoError(t, err)

	assert.InDelta(t, 0.025, two.AdjustedAlpha, 1e-12)
	assert.InDelta(t, 2.2414, two.ZAlpha, 1e-3)
	assert.Greater(t, two.SampleSizePerArm, one.SampleSizePerArm)
	assert.Equal(t, 3, two.Arms)
	assert.Equal(t, two.SampleSizePerArm*3, two.TotalSampleSize)

	p.ZMethod = ZTable
	table, err := SampleSize(p)
	require.NoError(t, err)
	assert.Equal(t, 2.241, table.ZAlpha)
}

func TestSampleSizeAbsoluteEffect(t *testing.T) {
	p := baseSizing()
	p.EffectType = Absolute
	p.MinimumDetectableEffect = 0.02
	abs, err := SampleSize(p)
	require.NoError(t, err)

	rel, err := SampleSize(baseSizing())
	require.NoError(t, err)
	assert.InDelta(t, 0.12, abs.TargetRate, 1e-12)
	assert.Equal(t, rel.SampleSizePerArm, abs.SampleSizePerArm)
}

func TestSampleSizeDuration(t *testing.T) {
	p := baseSizing()
	p.WeeklyTraffic = 1
	res, err := SampleSize(p)
	require.NoError(t, err)
	assert.Equal(t, res.TotalSampleSize, res.EstimatedWeeks)

	p.WeeklyTraffic = 1_000_000_000
	res, err = SampleSize(p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.EstimatedWeeks)
}

func TestSampleSizeRejectsInvalidInput(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(p *SizingParams)
	}{
		{"confidence zero", func(p *SizingParams) { p.ConfidenceLevel = 0 }},
		{"confidence hundred", func(p *SizingParams) { p.ConfidenceLevel = 100 }},
		{"power zero", func(p *SizingParams) { p.Power = 0 }},
		{"power hundred", func(p *SizingParams) { p.Power = 100 }},
		{"baseline zero", func(p *SizingParams) { p.BaselineRate = 0 }},
		{"baseline one", func(p *SizingParams) { p.BaselineRate = 1 }},
		{"mde zero", func(p *SizingParams) { p.MinimumDetectableEffect = 0 }},
		{"no variants", func(p *SizingParams) { p.NumVariants = 0 }},
		{"no traffic", func(p *SizingParams) { p.WeeklyTraffic = 0 }},
		{"unknown effect type", func(p *SizingParams) { p.EffectType = "percent" }},
		{"unknown z method", func(p *SizingParams) { p.ZMethod = "guess" }},
		{"target rate above one", func(p *SizingParams) { p.BaselineRate = 0.9; p.MinimumDetectableEffect = 0.5 }},
		{"absolute target above one", func(p *SizingParams) { p.EffectType = Absolute; p.MinimumDetectableEffect = 0.95 }},
		{"mde too small to size", func(p *SizingParams) { p.MinimumDetectableEffect = 1e-9 }},
		{"mde underflows", func(p *SizingParams) { p.MinimumDetectableEffect = 1e-17 }},
		{"absolute mde too small to size", func(p *SizingParams) { p.EffectType = Absolute; p.MinimumDetectableEffect = 1e-12 }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := baseSizing()
			tc.mutate(&p)
			_, err := SampleSize(p)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestSampleSizeLargestRepresentable(t *testing.T) {
	p := baseSizing()
	p.MinimumDetectableEffect = 1e-6
	p.WeeklyTraffic = 1000
	res, err := SampleSize(p)
	require.NoError(t, err)
	assert.Greater(t, res.SampleSizePerArm, int64(1e14))
	assert.Equal(t, res.SampleSizePerArm*2, res.TotalSampleSize)
	assert.Equal(t, (res.TotalSampleSize+999)/1000, res.EstimatedWeeks)

	p.WeeklyTraffic = math.MaxInt64
	res, err = SampleSize(p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.EstimatedWeeks)
}

func TestProperty_SampleSizeDecreasesWithMDE(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := SizingParams{
			ConfidenceLevel: rapid.SampledFrom([]float64{80, 90, 95, 99}).Draw(rt, "confidence"),
			Power:           rapid.SampledFrom([]float64{70, 80, 90, 95}).Draw(rt, "power"),
			BaselineRate:    rapid.Float64Range(0.01, 0.5).Draw(rt, "baseline"),
			EffectType:      rapid.SampledFrom([]EffectType{Relative, Absolute}).Draw(rt, "effectType"),
			NumVariants:     rapid.IntRange(1, 5).Draw(rt, "variants"),
			WeeklyTraffic:   rapid.Int64Range(1, 1_000_000).Draw(rt, "traffic"),
			ZMethod:         rapid.SampledFrom([]ZMethod{ZAnalytic, ZTable}).Draw(rt, "zMethod"),
		}
		small := rapid.Float64Range(0.01, 0.2).Draw(rt, "mde")
		if p.EffectType == Absolute {
			small *= p.BaselineRate
		}
		large := small * rapid.Float64Range(1.2, 2.0).Draw(rt, "factor")

		p.MinimumDetectableEffect = small
		a, err := SampleSize(p)
		if err != nil {
			rt.Fatalf("small mde: %v", err)
		}
		p.MinimumDetectableEffect = large
		b, err := SampleSize(p)
		if err != nil {
			rt.Fatalf("large mde: %v", err)
		}
		if b.SampleSizePerArm >= a.SampleSizePerArm {
			rt.Fatalf("sample size did not shrink: mde %.4f → %d, mde %.4f → %d", small, a.SampleSizePerArm, large, b.SampleSizePerArm)
		}
		if b.EstimatedWeeks > a.EstimatedWeeks {
			rt.Fatalf("duration grew: %d → %d", a.EstimatedWeeks, b.EstimatedWeeks)
		}
	})
}
