package abcalc

import (
	"fmt"
	"math"
)

// SignificanceThreshold is the p-value below which a difference is reported as significant.
// It does not follow Input.ConfidenceLevel, which only sizes the interval.
const SignificanceThreshold = 0.05

// minStandardError floors the pooled standard error for degenerate inputs.
const minStandardError = 1e-10

// Tail selects which p-value decides significance.
type Tail int

const (
	OneSided Tail = iota
	TwoSided
)

func (t Tail) String() string {
	switch t {
	case OneSided:
		return "one-sided"
	case TwoSided:
		return "two-sided"
	default:
		return fmt.Sprintf("Tail(%d)", int(t))
	}
}

// ParseTail accepts "one-sided"/"one" and "two-sided"/"two".
func ParseTail(s string) (Tail, error) {
	switch s {
	case "one-sided", "one", "":
		return OneSided, nil
	case "two-sided", "two":
		return TwoSided, nil
	}
	return OneSided, fmt.Errorf("%w: unknown tail %q", ErrInvalidInput, s)
}

func (t Tail) validate() error {
	if t != OneSided && t != TwoSided {
		return fmt.Errorf("%w: unknown tail %d", ErrInvalidInput, int(t))
	}
	return nil
}

func (t Tail) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Tail) UnmarshalText(b []byte) error {
	v, err := ParseTail(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// FrequentistResult is the outcome of the pooled two-proportion z-test.
type FrequentistResult struct {
	ZScore          float64  `json:"z_score"`
	StandardError   float64  `json:"standard_error"`
	PValueOneSided  float64  `json:"p_value_one_sided"`
	PValueTwoSided  float64  `json:"p_value_two_sided"`
	PValue          float64  `json:"p_value"`
	Tail            Tail     `json:"tail"`
	Significant     bool     `json:"significant"`
	ConfidenceLevel float64  `json:"confidence_level"`
	Difference      float64  `json:"difference"`
	Interval        Interval `json:"interval"`
}

// ZTest runs a pooled two-proportion z-test of the variant against the control.
//
// The one-sided p-value is 1-Φ(z) and tests whether the variant converts better; the
// two-sided p-value is 2(1-Φ(|z|)). Both are clamped to [0,1]. Equal rates short-circuit to
// z=0 and p=1. The interval for the rate difference uses the margin Φ⁻¹(ConfidenceLevel/100)·se.
//
// Invalid input yields an error wrapping ErrInvalidInput.
func ZTest(in Input, tail Tail) (FrequentistResult, error) {
	if err := in.Validate(); err != nil {
		return FrequentistResult{}, err
	}
	if err := tail.validate(); err != nil {
		return FrequentistResult{}, err
	}
	return testSignificance(in, tail), nil
}

func testSignificance(in Input, tail Tail) FrequentistResult {
	rc := in.Control.Rate()
	rv := in.Variant.Rate()
	diff := rv - rc

	nc := float64(in.Control.Visitors)
	nv := float64(in.Variant.Visitors)
	pooled := float64(in.Control.Conversions+in.Variant.Conversions) / (nc + nv)

	se := math.Sqrt(pooled * (1 - pooled) * (1/nc + 1/nv))
	if !(se >= minStandardError) {
		se = minStandardError
	}

	margin := InvNormalCDF(in.ConfidenceLevel/100) * se

	res := FrequentistResult{
		StandardError:   se,
		Tail:            tail,
		ConfidenceLevel: in.ConfidenceLevel,
		Difference:      diff,
		Interval:        Interval{Lower: diff - margin, Upper: diff + margin},
	}

	if rc == rv {
		res.PValueOneSided = 1
		res.PValueTwoSided = 1
		res.PValue = 1
		return res
	}

	z := diff / se
	res.ZScore = z
	res.PValueOneSided = clamp01(1 - NormalCDF(z))
	res.PValueTwoSided = clamp01(2 * (1 - NormalCDF(math.Abs(z))))
	if tail == TwoSided {
		res.PValue = res.PValueTwoSided
	} else {
		res.PValue = res.PValueOneSided
	}
	res.Significant = res.PValue < SignificanceThreshold
	return res
}
