// Package abcalc evaluates A/B tests on conversion data and plans their size.
//
// Analyze compares a control and a variant arm with a pooled two-proportion z-test and a
// beta-binomial Monte Carlo estimate, optionally backed by a bootstrap of the relative lift.
// SampleSize answers the planning question: how many visitors each arm needs to detect a
// given effect, and how many weeks of traffic that takes.
//
// Monte Carlo stages draw from a seedable xorshift* generator (DPRNG). Pass a non-zero seed
// to get reproducible results.
package abcalc

import (
	"math"
	"time"
)

// ArmSummary echoes an arm's counts with its conversion rate.
type ArmSummary struct {
	Visitors    int64   `json:"visitors"`
	Conversions int64   `json:"conversions"`
	Rate        float64 `json:"rate"`
}

func summarize(a Arm) ArmSummary {
	return ArmSummary{Visitors: a.Visitors, Conversions: a.Conversions, Rate: a.Rate()}
}

// Options tunes Analyze. The zero value runs a one-sided test with DefaultMonteCarloSamples
// draws, a random seed and no bootstrap.
type Options struct {
	Tail  Tail
	Bayes BayesOptions
	// LiftThresholds enables the bootstrap stage for the listed relative lifts.
	LiftThresholds []float64
	// BootstrapReps defaults to 10,000 when thresholds are given.
	BootstrapReps uint64
}

const DefaultBootstrapReps uint64 = 10_000

// Report is everything Analyze knows about one experiment.
type Report struct {
	Control            ArmSummary        `json:"control"`
	Variant            ArmSummary        `json:"variant"`
	AbsoluteDifference float64           `json:"absolute_difference"`
	RelativeLift       Ratio             `json:"relative_lift"`
	Frequentist        FrequentistResult `json:"frequentist"`
	Bayesian           BayesianResult    `json:"bayesian"`
	Bootstrap          []LiftConfidence  `json:"bootstrap,omitempty"`
	Elapsed            time.Duration     `json:"elapsed_ns"`
}

// RelativeLift returns (variantRate-controlRate)/controlRate. A zero control rate gives +Inf
// for a converting variant and 0 otherwise.
func RelativeLift(control, variant Arm) float64 {
	rc, rv := control.Rate(), variant.Rate()
	if rc == 0 {
		if rv > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return (rv - rc) / rc
}

// Analyze validates in and runs every stage on it. Validation errors wrap ErrInvalidInput and
// stop before any numeric routine runs.
func Analyze(in Input, opts Options) (*Report, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Tail.validate(); err != nil {
		return nil, err
	}
	if err := opts.Bayes.validate(); err != nil {
		return nil, err
	}
	start := SampleTime()

	r := &Report{
		Control:            summarize(in.Control),
		Variant:            summarize(in.Variant),
		AbsoluteDifference: in.Variant.Rate() - in.Control.Rate(),
		RelativeLift:       Ratio(RelativeLift(in.Control, in.Variant)),
		Frequentist:        testSignificance(in, opts.Tail),
		Bayesian:           estimateBayesian(in, opts.Bayes),
	}

	if len(opts.LiftThresholds) > 0 {
		reps := opts.BootstrapReps
		if reps == 0 {
			reps = DefaultBootstrapReps
		}
		// reuse the Monte Carlo seed so a seeded report is reproducible end to end
		lift, err := CompareLift(in, opts.LiftThresholds, reps, r.Bayesian.Seed)
		if err != nil {
			return nil, err
		}
		r.Bootstrap = lift
	}

	r.Elapsed = elapsedSince(start)
	return r, nil
}
