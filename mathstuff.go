package abcalc

import (
	"math"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"
)

// NormalCDF is the standard normal cumulative distribution function Φ.
func NormalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// InvNormalCDF returns Φ⁻¹(p). It returns -Inf for p=0, +Inf for p=1 and NaN outside [0,1].
func InvNormalCDF(p float64) float64 {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return math.NaN()
	}
	if p == 0 {
		return math.Inf(-1)
	}
	if p == 1 {
		return math.Inf(1)
	}
	return distuv.UnitNormal.Quantile(p)
}

// LogBeta returns ln B(a, b).
func LogBeta(a, b float64) float64 {
	return mathext.Lbeta(a, b)
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// expGuarded exponentiates a log-ratio. Non-finite results map to +Inf for positive
// exponents and to 0 otherwise.
func expGuarded(logValue float64) float64 {
	v := math.Exp(logValue)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		if logValue > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return v
}

// relativeDelta returns (a-b)/b, the relative change from b to a.
//
// Edge cases:
//   - NaN in either argument yields NaN.
//   - Equal values (both zero, or infinities of the same sign) yield 0.
//   - A denominator too small to divide by is replaced with a scale-aware epsilon
//     max(|b|*1e-12, SmallestNonzeroFloat64); a quotient that still overflows is capped at
//     ±MaxFloat64, so the result stays finite.
func relativeDelta(a, b float64) float64 {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.NaN()
	}
	if a == b || (math.IsInf(a, -1) && math.IsInf(b, -1)) || (math.IsInf(a, 1) && math.IsInf(b, 1)) {
		return 0.0
	}
	rel := 1e-12
	eps := math.Max(math.Abs(b)*rel, math.SmallestNonzeroFloat64)
	denom := b
	if math.Abs(b) < eps {
		denom = eps
	}
	d := (a - b) / denom
	if math.IsInf(d, 0) {
		return math.Copysign(math.MaxFloat64, d)
	}
	return d
}

// Statistics returns the mean, the population variance and the standard deviation of data.
// For empty input it returns (0, -1, -1).
func Statistics(data []float64) (mean, variance, stddev float64) {
	if len(data) == 0 {
		return 0, -1, -1
	}

	var sum float64
	n := float64(len(data))

	for _, value := range data {
		sum += value
	}
	mean = sum / n

	for _, value := range data {
		variance += (value - mean) * (value - mean)
	}
	variance /= n
	stddev = math.Sqrt(variance)
	return
}

// FloatsEqualWithTolerance reports whether f1 and f2 differ by at most tolerancePercentage
// percent of either value.
func FloatsEqualWithTolerance(f1, f2, tolerancePercentage float64) bool {
	absTol1 := math.Abs(f1 * tolerancePercentage / 100)
	if f1-absTol1 <= f2 && f1+absTol1 >= f2 {
		return true
	}
	absTol2 := math.Abs(f2 * tolerancePercentage / 100)
	if f2-absTol2 <= f1 && f2+absTol2 >= f1 {
		return true
	}
	return false
}
