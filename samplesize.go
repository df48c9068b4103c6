package abcalc

import (
	"fmt"
	"math"
	"slices"
)

// EffectType says how SizingParams.MinimumDetectableEffect relates to the baseline rate.
type EffectType string

const (
	// Relative: the variant rate is baseline*(1+mde).
	Relative EffectType = "relative"
	// Absolute: the variant rate is baseline+mde.
	Absolute EffectType = "absolute"
)

// ZMethod selects how z-scores are obtained for the sizing formula.
type ZMethod string

const (
	// ZAnalytic inverts the normal CDF.
	ZAnalytic ZMethod = "analytic"
	// ZTable picks the nearest entry of a table of commonly used levels.
	ZTable ZMethod = "table"
)

// two-sided critical values, keyed by confidence in percent
var confidenceZTable = map[float64]float64{
	80:   1.282,
	85:   1.440,
	90:   1.645,
	95:   1.960,
	97.5: 2.241,
	98:   2.326,
	99:   2.576,
	99.5: 2.807,
	99.9: 3.291,
}

// one-sided values, keyed by power in percent
var powerZTable = map[float64]float64{
	50: 0.000,
	60: 0.253,
	70: 0.524,
	75: 0.674,
	80: 0.842,
	85: 1.036,
	90: 1.282,
	95: 1.645,
	99: 2.326,
}

// lookupZ returns the table value whose key is closest to level. Ties go to the lower key.
func lookupZ(table map[float64]float64, level float64) float64 {
	keys := make([]float64, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	best := keys[0]
	for _, k := range keys[1:] {
		if math.Abs(k-level) < math.Abs(best-level) {
			best = k
		}
	}
	return table[best]
}

// SizingParams describes the experiment to be planned. ConfidenceLevel and Power are in
// percent, BaselineRate is a fraction. NumVariants counts the variants compared against the
// control, so a plain A/B test has NumVariants=1.
type SizingParams struct {
	ConfidenceLevel         float64    `json:"confidence_level" yaml:"confidence_level" validate:"gt=0,lt=100"`
	Power                   float64    `json:"power" yaml:"power" validate:"gt=0,lt=100"`
	BaselineRate            float64    `json:"baseline_rate" yaml:"baseline_rate" validate:"gt=0,lt=1"`
	MinimumDetectableEffect float64    `json:"minimum_detectable_effect" yaml:"minimum_detectable_effect" validate:"gt=0"`
	EffectType              EffectType `json:"effect_type" yaml:"effect_type" validate:"omitempty,oneof=relative absolute"`
	NumVariants             int        `json:"num_variants" yaml:"num_variants" validate:"gte=1"`
	WeeklyTraffic           int64      `json:"weekly_traffic" yaml:"weekly_traffic" validate:"gt=0"`
	ZMethod                 ZMethod    `json:"z_method" yaml:"z_method" validate:"omitempty,oneof=analytic table"`
}

// SizingResult holds the required sample per arm and the derived campaign length.
type SizingResult struct {
	BaselineRate     float64 `json:"baseline_rate"`
	TargetRate       float64 `json:"target_rate"`
	AdjustedAlpha    float64 `json:"adjusted_alpha"`
	ZAlpha           float64 `json:"z_alpha"`
	ZBeta            float64 `json:"z_beta"`
	SampleSizePerArm int64   `json:"sample_size_per_arm"`
	Arms             int     `json:"arms"`
	TotalSampleSize  int64   `json:"total_sample_size"`
	EstimatedWeeks   int64   `json:"estimated_weeks"`
}

// SampleSize computes the per-arm sample size of a two-proportion z-test
//
//	n = (zα·sqrt(2·p̄(1-p̄)) + zβ·sqrt(p1(1-p1) + p2(1-p2)))² / (p2-p1)²
//
// with a Bonferroni-adjusted alpha (alpha/NumVariants) and zα taken two-sided.
// The total covers the control and every variant; the duration is the total divided by the
// weekly traffic, rounded up to whole weeks.
func SampleSize(p SizingParams) (SizingResult, error) {
	if err := validateStruct(p); err != nil {
		return SizingResult{}, err
	}
	if p.EffectType == "" {
		p.EffectType = Relative
	}
	if p.ZMethod == "" {
		p.ZMethod = ZAnalytic
	}

	p1 := p.BaselineRate
	var p2 float64
	switch p.EffectType {
	case Absolute:
		p2 = p1 + p.MinimumDetectableEffect
	default:
		p2 = p1 * (1 + p.MinimumDetectableEffect)
	}
	if !(p2 > 0 && p2 < 1) {
		return SizingResult{}, fmt.Errorf("%w: target rate %.6f is outside (0,1)", ErrInvalidInput, p2)
	}

	alpha := 1 - p.ConfidenceLevel/100
	adjustedAlpha := alpha / float64(p.NumVariants)

	var zAlpha, zBeta float64
	switch p.ZMethod {
	case ZTable:
		zAlpha = lookupZ(confidenceZTable, 100*(1-adjustedAlpha))
		zBeta = lookupZ(powerZTable, p.Power)
	default:
		zAlpha = InvNormalCDF(1 - adjustedAlpha/2)
		zBeta = InvNormalCDF(p.Power / 100)
	}

	pBar := (p1 + p2) / 2
	num := zAlpha*math.Sqrt(2*pBar*(1-pBar)) + zBeta*math.Sqrt(p1*(1-p1)+p2*(1-p2))
	d := p2 - p1
	perArm := math.Ceil(num * num / (d * d))

	arms := p.NumVariants + 1
	// also rejects Inf and NaN from an underflowing (p2-p1)²
	if !(perArm*float64(arms) < math.MaxInt64) {
		return SizingResult{}, fmt.Errorf("%w: sample size for a %g effect is not representable", ErrInvalidInput, p.MinimumDetectableEffect)
	}
	n := int64(perArm)
	total := n * int64(arms)
	weeks := total / p.WeeklyTraffic
	if total%p.WeeklyTraffic != 0 {
		weeks++
	}

	return SizingResult{
		BaselineRate:     p1,
		TargetRate:       p2,
		AdjustedAlpha:    adjustedAlpha,
		ZAlpha:           zAlpha,
		ZBeta:            zBeta,
		SampleSizePerArm: n,
		Arms:             arms,
		TotalSampleSize:  total,
		EstimatedWeeks:   weeks,
	}, nil
}
