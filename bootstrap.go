package abcalc

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat/distuv"
)

// LiftConfidence pairs a relative-lift threshold with the confidence that the variant's
// lift over the control reaches it.
type LiftConfidence struct {
	RelativeLift float64 `json:"relative_lift"`
	Confidence   float64 `json:"confidence"`
}

// CompareLift runs BootstrapLiftConfidence for the given thresholds and returns the results
// sorted by threshold. An empty threshold list tests a lift of 0, i.e. "variant not worse".
func CompareLift(in Input, thresholds []float64, reps uint64, prngSeed uint64) ([]LiftConfidence, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if len(thresholds) == 0 {
		thresholds = []float64{0.0}
	}
	thresholds = slices.Clone(thresholds)
	slices.Sort(thresholds)

	conf := bootstrapLiftConfidence(in, thresholds, reps, prngSeed)
	result := make([]LiftConfidence, 0, len(thresholds))
	for _, t := range thresholds {
		result = append(result, LiftConfidence{RelativeLift: t, Confidence: conf[t]})
	}
	return result, nil
}

// BootstrapLiftConfidence estimates, for every threshold, the probability that the relative
// lift of the variant over the control is at least that threshold.
//
// Each of the reps replicates redraws both arms' conversions from Binomial(visitors, rate)
// and evaluates
//
//	lift = (rate(variant replicate) - rate(control replicate)) / rate(control replicate)
//
// A threshold is counted when lift >= threshold. The returned map holds the fraction of
// replicates meeting each threshold.
//
// Numerical and edge-case behavior:
//   - If reps is zero every threshold maps to math.NaN().
//   - A replicate whose control rate is zero uses a tiny epsilon as denominator, so any
//     positive variant rate counts as a huge lift. If both replicate rates are zero the lift is 0.
//
// Use 0 as prngSeed for a random seed, or a non-zero seed to reproduce results across runs.
func BootstrapLiftConfidence(in Input, thresholds []float64, reps uint64, prngSeed uint64) (map[float64]float64, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return bootstrapLiftConfidence(in, thresholds, reps, prngSeed), nil
}

func bootstrapLiftConfidence(in Input, thresholds []float64, reps uint64, prngSeed uint64) (confidenceForThreshold map[float64]float64) {
	confidenceForThreshold = make(map[float64]float64, len(thresholds))

	if reps == 0 {
		for _, threshold := range thresholds {
			confidenceForThreshold[threshold] = math.NaN()
		}
		return confidenceForThreshold
	}

	rng := NewDPRNG(prngSeed)
	nc := float64(in.Control.Visitors)
	nv := float64(in.Variant.Visitors)
	control := distuv.Binomial{N: nc, P: in.Control.Rate(), Src: rng}
	variant := distuv.Binomial{N: nv, P: in.Variant.Rate(), Src: rng}

	counts := make(map[float64]uint64, len(thresholds))
	for range reps {
		rc := control.Rand() / nc
		rv := variant.Rand() / nv
		lift := relativeDelta(rv, rc)

		for _, threshold := range thresholds {
			if lift >= threshold {
				counts[threshold]++
			}
		}
	}

	for _, threshold := range thresholds {
		confidenceForThreshold[threshold] = float64(counts[threshold]) / float64(reps)
	}
	return confidenceForThreshold
}
