// Package stats computes baseline spending statistics for behavioral risk scoring.
//
// All statistics are population statistics (divide by N). The re-baselining
// pass keeps historical fraud from inflating a user's "normal" spending range:
// an outlier that slips into history would otherwise widen the standard
// deviation and suppress future detections.
package stats

import "math"

const (
	// rebaselineCutoff is the |z| bound for a historical amount to count as
	// normal-looking when rebuilding the baseline.
	rebaselineCutoff = 2.0

	// minBaselineSize is the minimum number of surviving amounts required
	// before the filtered statistics replace the unfiltered ones.
	minBaselineSize = 3

	// estimatedStdDevRatio substitutes a stddev when history has none
	// (single amount, or every amount identical).
	estimatedStdDevRatio = 0.2
)

// Summary holds amount statistics over a slice of historical amounts.
type Summary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	Count  int     `json:"count"`
}

// Compute returns the population mean and standard deviation of amounts.
// An empty slice yields a zero Summary.
func Compute(amounts []float64) Summary {
	n := len(amounts)
	if n == 0 {
		return Summary{}
	}

	var sum float64
	for _, a := range amounts {
		sum += a
	}
	mean := sum / float64(n)

	var sqDiff float64
	for _, a := range amounts {
		d := a - mean
		sqDiff += d * d
	}

	return Summary{
		Mean:   mean,
		StdDev: math.Sqrt(sqDiff / float64(n)),
		Count:  n,
	}
}

// Rebaseline computes outlier-resistant statistics:
//
//  1. Compute initial mean/stddev over all amounts.
//  2. Keep only amounts with |z| < 2 against the initial statistics.
//  3. If at least 3 survive, recompute from the survivors; otherwise the
//     initial statistics stand.
func Rebaseline(amounts []float64) Summary {
	initial := Compute(amounts)
	if initial.Count == 0 {
		return initial
	}

	sd := EffectiveStdDev(initial.Mean, initial.StdDev)

	baseline := make([]float64, 0, len(amounts))
	for _, a := range amounts {
		if math.Abs(ZScore(a, initial.Mean, sd)) < rebaselineCutoff {
			baseline = append(baseline, a)
		}
	}

	if len(baseline) < minBaselineSize {
		return initial
	}
	return Compute(baseline)
}

// EffectiveStdDev returns the stddev to divide by when computing z-scores.
// A zero stddev (flat history) is replaced with 0.2 * mean so that a single
// deviating amount still produces a meaningful score.
func EffectiveStdDev(mean, stdDev float64) float64 {
	if stdDev > 0 {
		return stdDev
	}
	return estimatedStdDevRatio * mean
}

// ZScore returns the signed number of standard deviations amount sits from
// mean. Defined as 0 when the effective stddev is 0 (mean and stddev both 0).
func ZScore(amount, mean, stdDev float64) float64 {
	if stdDev <= 0 {
		return 0
	}
	return (amount - mean) / stdDev
}
