package risk

import (
	"context"
	"testing"
)

func classify(t *testing.T, in Input, b Baseline) *Analysis {
	t.Helper()
	return NewClassifier(nil).Classify(context.Background(), in, b)
}

func TestHighRiskBlocked(t *testing.T) {
	// amount=25000 against mean=5000, std=2000 → z=10 → HIGH.
	a := classify(t,
		Input{UserID: "u1", Amount: 25000, Location: "Mumbai", Hour: 14},
		Baseline{Mean: 5000, StdDev: 2000, HasStats: true},
	)
	if a.ZScore != 10.0 {
		t.Errorf("z = %f, want 10.0", a.ZScore)
	}
	if a.Level != LevelHigh {
		t.Errorf("level = %s, want HIGH", a.Level)
	}
	if a.Outcome != OutcomeBlocked || a.Action != ActionBlock {
		t.Errorf("decision = %s/%s, want BLOCKED/BLOCK", a.Outcome, a.Action)
	}
}

func TestLowRiskVerified(t *testing.T) {
	// amount=5200 against mean=5000, std=2000 → z=0.1 → LOW.
	a := classify(t,
		Input{UserID: "u1", Amount: 5200, Location: "Mumbai", Hour: 14},
		Baseline{Mean: 5000, StdDev: 2000, HasStats: true},
	)
	if a.ZScore != 0.1 {
		t.Errorf("z = %f, want 0.1", a.ZScore)
	}
	if a.Level != LevelLow || a.Outcome != OutcomeVerified || a.Action != ActionAllow {
		t.Errorf("got %s/%s/%s, want LOW/VERIFIED/ALLOW", a.Level, a.Outcome, a.Action)
	}
}

func TestTierBoundaries(t *testing.T) {
	b := Baseline{Mean: 0, StdDev: 1, HasStats: true}
	cases := []struct {
		amount float64
		want   Level
	}{
		{1.99, LevelLow},
		{2.0, LevelMedium}, // lower bound inclusive
		{3.0, LevelMedium}, // upper bound inclusive
		{3.01, LevelHigh},
		{-2.5, LevelMedium}, // signed: below-average deviations classify too
		{-3.5, LevelHigh},
	}
	for _, tc := range cases {
		a := classify(t, Input{UserID: "u1", Amount: tc.amount, Hour: 12}, b)
		if a.Level != tc.want {
			t.Errorf("amount %f: level = %s, want %s", tc.amount, a.Level, tc.want)
		}
	}
}

func TestNewUserDefaults(t *testing.T) {
	// No stats: assume mean=5000, std=2000. amount=5200 → z=0.1 → LOW.
	a := classify(t, Input{UserID: "new", Amount: 5200, Hour: 12}, Baseline{})
	if a.Mean != NewUserMean || a.StdDev != NewUserStdDev {
		t.Errorf("assumed stats = %f/%f, want %f/%f", a.Mean, a.StdDev, NewUserMean, NewUserStdDev)
	}
	if !a.Estimated {
		t.Error("new-user analysis should be marked estimated")
	}
	if a.Level != LevelLow {
		t.Errorf("level = %s, want LOW", a.Level)
	}
}

func TestNewUserAbsoluteOverride(t *testing.T) {
	// amount=60000 against the assumed stats gives z=27.5, which would read
	// HIGH, but the assumed baseline is a guess: the override pins the tier
	// to MEDIUM so the transaction is flagged for step-up, not blocked.
	a := classify(t, Input{UserID: "new", Amount: 60000, Hour: 12}, Baseline{})
	if a.Level != LevelMedium {
		t.Errorf("new-user amount 60000: level = %s, want MEDIUM", a.Level)
	}
	if a.Outcome != OutcomeFlagged || a.Action != ActionDelay {
		t.Errorf("decision = %s/%s, want FLAGGED/DELAY", a.Outcome, a.Action)
	}

	// A known baseline is trusted: the same amount with real stats keeps
	// its z-derived tier.
	a = classify(t, Input{UserID: "u1", Amount: 60000, Hour: 12},
		Baseline{Mean: 5000, StdDev: 2000, HasStats: true})
	if a.Level != LevelHigh {
		t.Errorf("known-baseline amount 60000: level = %s, want HIGH", a.Level)
	}
}

func TestLocationEscalationRatchet(t *testing.T) {
	b := Baseline{
		Mean: 5000, StdDev: 2000, HasStats: true,
		TrustedLocations: []string{"Mumbai Central"},
	}

	// |z| = 1.6 (amount 8200), untrusted location → escalate LOW → MEDIUM.
	a := classify(t, Input{UserID: "u1", Amount: 8200, Location: "Delhi", Hour: 12}, b)
	if a.Level != LevelMedium {
		t.Errorf("untrusted location at |z|=1.6 should escalate to MEDIUM, got %s", a.Level)
	}
	if a.LocationMatch {
		t.Error("location should not match")
	}

	// Same amount, trusted location → stays LOW.
	a = classify(t, Input{UserID: "u1", Amount: 8200, Location: "mumbai", Hour: 12}, b)
	if a.Level != LevelLow {
		t.Errorf("trusted location should stay LOW, got %s", a.Level)
	}
	if !a.LocationMatch {
		t.Error("fuzzy match should accept case-insensitive substring")
	}

	// |z| = 1.0, untrusted location → below the 1.5 bar, stays LOW.
	a = classify(t, Input{UserID: "u1", Amount: 7000, Location: "Delhi", Hour: 12}, b)
	if a.Level != LevelLow {
		t.Errorf("|z|=1.0 should not escalate, got %s", a.Level)
	}

	// Already MEDIUM by z: the rule never de-escalates and never stacks.
	a = classify(t, Input{UserID: "u1", Amount: 10000, Location: "Delhi", Hour: 12}, b)
	if a.Level != LevelMedium {
		t.Errorf("z=2.5 untrusted should stay MEDIUM, got %s", a.Level)
	}
}

func TestNoTrustedLocationsSkipsCheck(t *testing.T) {
	// With no trusted locations configured the check is skipped entirely:
	// no mismatch deduction, no escalation.
	a := classify(t,
		Input{UserID: "u1", Amount: 8200, Location: "Anywhere", Hour: 12},
		Baseline{Mean: 5000, StdDev: 2000, HasStats: true},
	)
	if !a.LocationMatch {
		t.Error("skipped check should not report a mismatch")
	}
	if a.Level != LevelLow {
		t.Errorf("level = %s, want LOW", a.Level)
	}
}

func TestZeroStdDevUsesEstimate(t *testing.T) {
	// Flat history: stddev substituted with 0.2*mean = 1000.
	a := classify(t,
		Input{UserID: "u1", Amount: 7500, Hour: 12},
		Baseline{Mean: 5000, StdDev: 0, HasStats: true},
	)
	if a.StdDev != 1000 {
		t.Errorf("effective stddev = %f, want 1000", a.StdDev)
	}
	if a.ZScore != 2.5 {
		t.Errorf("z = %f, want 2.5", a.ZScore)
	}
	if !a.Estimated {
		t.Error("estimated flag should be set when stddev is substituted")
	}
}

func TestDeterministicAnalysis(t *testing.T) {
	in := Input{UserID: "u1", Amount: 8200, Location: "Delhi", Hour: 2}
	b := Baseline{Mean: 5000, StdDev: 2000, HasStats: true, TrustedLocations: []string{"Mumbai"}}

	a1 := classify(t, in, b)
	a2 := classify(t, in, b)

	if a1.ZScore != a2.ZScore || a1.Level != a2.Level || a1.ComplianceScore != a2.ComplianceScore {
		t.Errorf("identical inputs must yield identical analysis: %+v vs %+v", a1, a2)
	}
	if len(a1.Factors) != len(a2.Factors) {
		t.Fatalf("factor count differs: %d vs %d", len(a1.Factors), len(a2.Factors))
	}
	for i := range a1.Factors {
		if a1.Factors[i] != a2.Factors[i] {
			t.Errorf("factor %d differs: %+v vs %+v", i, a1.Factors[i], a2.Factors[i])
		}
	}
}

func TestVocabularyCorrespondence(t *testing.T) {
	pairs := []struct {
		level   Level
		outcome Outcome
		action  Action
	}{
		{LevelLow, OutcomeVerified, ActionAllow},
		{LevelMedium, OutcomeFlagged, ActionDelay},
		{LevelHigh, OutcomeBlocked, ActionBlock},
	}
	for _, p := range pairs {
		if p.level.Outcome() != p.outcome {
			t.Errorf("%s → %s, want %s", p.level, p.level.Outcome(), p.outcome)
		}
		if p.level.Outcome().Action() != p.action {
			t.Errorf("%s → %s, want %s", p.level, p.level.Outcome().Action(), p.action)
		}
	}
}
