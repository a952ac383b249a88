package stats

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputePopulationStats(t *testing.T) {
	s := Compute([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if !almostEqual(s.Mean, 5.0) {
		t.Errorf("mean = %f, want 5.0", s.Mean)
	}
	// Population stddev (divide by N), not sample.
	if !almostEqual(s.StdDev, 2.0) {
		t.Errorf("stddev = %f, want 2.0", s.StdDev)
	}
	if s.Count != 8 {
		t.Errorf("count = %d, want 8", s.Count)
	}
}

func TestComputeEmpty(t *testing.T) {
	s := Compute(nil)
	if s.Mean != 0 || s.StdDev != 0 || s.Count != 0 {
		t.Errorf("empty input should yield zero summary, got %+v", s)
	}
}

func TestRebaselineExcludesOutlier(t *testing.T) {
	// Initial stats over [100,100,100,100,10000]: mean=2080, the 10000 sits
	// beyond |z|=2 and must be dropped; 4 points remain (>= 3) so the final
	// statistics come from the clean set only.
	s := Rebaseline([]float64{100, 100, 100, 100, 10000})
	if !almostEqual(s.Mean, 100) {
		t.Errorf("rebaselined mean = %f, want 100", s.Mean)
	}
	if !almostEqual(s.StdDev, 0) {
		t.Errorf("rebaselined stddev = %f, want 0", s.StdDev)
	}
	if s.Count != 4 {
		t.Errorf("baseline count = %d, want 4", s.Count)
	}
}

func TestRebaselineFallsBackWhenTooFewSurvive(t *testing.T) {
	// Two wildly different amounts: the filtered set can never reach 3
	// members, so the unfiltered statistics stand.
	amounts := []float64{100, 10000}
	initial := Compute(amounts)
	s := Rebaseline(amounts)
	if !almostEqual(s.Mean, initial.Mean) || !almostEqual(s.StdDev, initial.StdDev) {
		t.Errorf("expected fallback to initial stats %+v, got %+v", initial, s)
	}
}

func TestRebaselineAllNormal(t *testing.T) {
	s := Rebaseline([]float64{90, 100, 110, 95, 105})
	if s.Count != 5 {
		t.Errorf("all-normal history should keep every point, got count %d", s.Count)
	}
}

func TestEffectiveStdDev(t *testing.T) {
	if got := EffectiveStdDev(5000, 2000); !almostEqual(got, 2000) {
		t.Errorf("EffectiveStdDev(5000, 2000) = %f, want 2000", got)
	}
	// Flat history: substitute 0.2 * mean.
	if got := EffectiveStdDev(5000, 0); !almostEqual(got, 1000) {
		t.Errorf("EffectiveStdDev(5000, 0) = %f, want 1000", got)
	}
	if got := EffectiveStdDev(0, 0); !almostEqual(got, 0) {
		t.Errorf("EffectiveStdDev(0, 0) = %f, want 0", got)
	}
}

func TestZScore(t *testing.T) {
	if got := ZScore(25000, 5000, 2000); !almostEqual(got, 10.0) {
		t.Errorf("ZScore(25000, 5000, 2000) = %f, want 10.0", got)
	}
	if got := ZScore(5200, 5000, 2000); !almostEqual(got, 0.1) {
		t.Errorf("ZScore(5200, 5000, 2000) = %f, want 0.1", got)
	}
	// Below-average amounts produce signed negative scores.
	if got := ZScore(1000, 5000, 2000); !almostEqual(got, -2.0) {
		t.Errorf("ZScore(1000, 5000, 2000) = %f, want -2.0", got)
	}
	// Zero stddev with zero mean: z defined as 0.
	if got := ZScore(123, 0, 0); got != 0 {
		t.Errorf("ZScore with zero stats = %f, want 0", got)
	}
}
