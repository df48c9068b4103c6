package abcalc

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// PriorAlpha and PriorBeta define the Beta(8, 42) prior shared by both arms,
	// centred near an 8/50 = 16% conversion rate.
	PriorAlpha = 8.0
	PriorBeta  = 42.0

	DefaultMonteCarloSamples uint64 = 100_000
	// MaxMonteCarloSamples bounds BayesOptions.Samples; every draw keeps one float64 lift.
	MaxMonteCarloSamples uint64 = 20_000_000

	liftCredibleMass = 0.95
)

// Ratio is a float64 that encodes infinities and NaN as JSON strings ("+Inf", "-Inf", "NaN")
// instead of failing the encoder.
type Ratio float64

func (r Ratio) MarshalJSON() ([]byte, error) {
	f := float64(r)
	switch {
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	}
	return json.Marshal(f)
}

func (r *Ratio) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		switch s {
		case "+Inf", "Inf":
			*r = Ratio(math.Inf(1))
		case "-Inf":
			*r = Ratio(math.Inf(-1))
		case "NaN":
			*r = Ratio(math.NaN())
		default:
			return fmt.Errorf("invalid ratio %q", s)
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*r = Ratio(f)
	return nil
}

// BayesOptions controls the Monte Carlo stage. Samples=0 selects DefaultMonteCarloSamples,
// Seed=0 selects a random seed (reported back in BayesianResult.Seed).
type BayesOptions struct {
	Samples uint64 `json:"samples" yaml:"samples"`
	Seed    uint64 `json:"seed" yaml:"seed"`
}

func (o BayesOptions) validate() error {
	if o.Samples > MaxMonteCarloSamples {
		return fmt.Errorf("%w: %d Monte Carlo samples exceed the maximum of %d", ErrInvalidInput, o.Samples, MaxMonteCarloSamples)
	}
	return nil
}

// BayesianResult summarises the beta-binomial comparison of both arms.
type BayesianResult struct {
	Samples                uint64   `json:"samples"`
	Seed                   uint64   `json:"seed"`
	ProbabilityVariantWins float64  `json:"probability_variant_wins"`
	ProbabilityControlWins float64  `json:"probability_control_wins"`
	LogBayesFactor         float64  `json:"log_bayes_factor"`
	BayesFactor            Ratio    `json:"bayes_factor"`
	ExpectedLift           float64  `json:"expected_lift"`
	LiftInterval           Interval `json:"lift_interval"`
}

// Posterior returns the Beta posterior parameters of an arm under the shared prior.
func Posterior(a Arm) (alpha, beta float64) {
	return PriorAlpha + float64(a.Conversions), PriorBeta + float64(a.failures())
}

// EstimateBayesian draws opts.Samples pairs from the control and variant posteriors and
// reports the fraction in which the variant draw exceeds the control draw, together with the
// Bayes factor of "arms differ" against "arms share one rate".
func EstimateBayesian(in Input, opts BayesOptions) (BayesianResult, error) {
	if err := in.Validate(); err != nil {
		return BayesianResult{}, err
	}
	if err := opts.validate(); err != nil {
		return BayesianResult{}, err
	}
	return estimateBayesian(in, opts), nil
}

func estimateBayesian(in Input, opts BayesOptions) BayesianResult {
	n := opts.Samples
	if n == 0 {
		n = DefaultMonteCarloSamples
	}
	rng := NewDPRNG(opts.Seed)
	seed := rng.State

	ac, bc := Posterior(in.Control)
	av, bv := Posterior(in.Variant)
	control := distuv.Beta{Alpha: ac, Beta: bc, Src: rng}
	variant := distuv.Beta{Alpha: av, Beta: bv, Src: rng}

	lifts := make([]float64, 0, n)
	var wins uint64
	for range n {
		c := control.Rand()
		v := variant.Rand()
		if v > c {
			wins++
		}
		if c > 0 {
			lifts = append(lifts, (v-c)/c)
		}
	}

	pv := float64(wins) / float64(n)
	logBF := LogBayesFactor(in.Control, in.Variant)
	res := BayesianResult{
		Samples:                n,
		Seed:                   seed,
		ProbabilityVariantWins: pv,
		ProbabilityControlWins: 1 - pv,
		LogBayesFactor:         logBF,
		BayesFactor:            Ratio(expGuarded(logBF)),
	}
	if len(lifts) > 0 {
		slices.Sort(lifts)
		res.ExpectedLift, _, _ = Statistics(lifts)
		tail := (1 - liftCredibleMass) / 2
		res.LiftInterval = Interval{
			Lower: stat.Quantile(tail, stat.Empirical, lifts, nil),
			Upper: stat.Quantile(1-tail, stat.Empirical, lifts, nil),
		}
	}
	return res
}

// LogBayesFactor returns ln(m1/m0) where m1 is the marginal likelihood of both arms having
// independent Beta(PriorAlpha, PriorBeta) rates and m0 that of a single pooled rate. Binomial
// coefficients appear in both and cancel.
func LogBayesFactor(control, variant Arm) float64 {
	a, b := PriorAlpha, PriorBeta
	prior := LogBeta(a, b)

	cc, fc := float64(control.Conversions), float64(control.failures())
	cv, fv := float64(variant.Conversions), float64(variant.failures())

	logM1 := LogBeta(a+cc, b+fc) - prior + LogBeta(a+cv, b+fv) - prior
	logM0 := LogBeta(a+cc+cv, b+fc+fv) - prior
	return logM1 - logM0
}
