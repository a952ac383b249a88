package risk

import (
	"context"
	"strings"
	"testing"
)

func TestFactorOrderAndTypes(t *testing.T) {
	a := NewClassifier(nil).Classify(context.Background(),
		Input{UserID: "u1", Amount: 5200, Location: "Mumbai", Hour: 14},
		Baseline{
			Mean: 5000, StdDev: 2000, HasStats: true,
			TrustedLocations: []string{"Mumbai"},
			PreferredHours:   []int{10, 14, 18},
		},
	)

	if len(a.Factors) != 3 {
		t.Fatalf("expected 3 factors (amount, location, time), got %d", len(a.Factors))
	}
	if a.Factors[0].Type != FactorGood || !strings.Contains(a.Factors[0].Message, "$5200.00") {
		t.Errorf("amount factor wrong: %+v", a.Factors[0])
	}
	if !strings.Contains(a.Factors[0].Detail, "0.10") {
		t.Errorf("amount detail must carry the z-score to 2 decimals: %q", a.Factors[0].Detail)
	}
	if a.Factors[1].Type != FactorGood {
		t.Errorf("location factor should be good on match: %+v", a.Factors[1])
	}
	if a.Factors[2].Type != FactorGood {
		t.Errorf("time factor should be good for a preferred hour: %+v", a.Factors[2])
	}
}

func TestAmountFactorTierLanguage(t *testing.T) {
	b := Baseline{Mean: 5000, StdDev: 2000, HasStats: true}
	cases := []struct {
		amount float64
		want   FactorType
	}{
		{5200, FactorGood},
		{10000, FactorWarn}, // z=2.5 → MEDIUM
		{25000, FactorBad},  // z=10 → HIGH
	}
	for _, tc := range cases {
		a := NewClassifier(nil).Classify(context.Background(),
			Input{UserID: "u1", Amount: tc.amount, Hour: 12}, b)
		if a.Factors[0].Type != tc.want {
			t.Errorf("amount %f: factor type %s, want %s", tc.amount, a.Factors[0].Type, tc.want)
		}
	}
}

func TestLocationFactorVariants(t *testing.T) {
	// No trusted locations → info, check skipped.
	a := NewClassifier(nil).Classify(context.Background(),
		Input{UserID: "u1", Amount: 5000, Location: "Anywhere", Hour: 12},
		Baseline{Mean: 5000, StdDev: 2000, HasStats: true})
	if a.Factors[1].Type != FactorInfo {
		t.Errorf("no-trusted-locations factor should be info: %+v", a.Factors[1])
	}

	// Mismatch → warn with the trusted list echoed.
	a = NewClassifier(nil).Classify(context.Background(),
		Input{UserID: "u1", Amount: 5000, Location: "Delhi", Hour: 12},
		Baseline{Mean: 5000, StdDev: 2000, HasStats: true,
			TrustedLocations: []string{"Mumbai", "Pune"}})
	if a.Factors[1].Type != FactorWarn {
		t.Errorf("mismatch factor should be warn: %+v", a.Factors[1])
	}
	if !strings.Contains(a.Factors[1].Detail, "Mumbai") || !strings.Contains(a.Factors[1].Detail, "Pune") {
		t.Errorf("mismatch detail should echo the trusted list: %q", a.Factors[1].Detail)
	}
}

func TestTimeFactorVariants(t *testing.T) {
	b := Baseline{Mean: 5000, StdDev: 2000, HasStats: true, PreferredHours: []int{10, 11}}

	// Late-night band is [23:00, 05:59], inclusive of hour 5.
	for _, hour := range []int{23, 0, 3, 5} {
		a := NewClassifier(nil).Classify(context.Background(),
			Input{UserID: "u1", Amount: 5000, Hour: hour}, b)
		if a.Factors[2].Type != FactorWarn {
			t.Errorf("hour %d should be a late-night warn, got %+v", hour, a.Factors[2])
		}
		if !a.UnusualTime {
			t.Errorf("hour %d should set UnusualTime", hour)
		}
	}

	// Hour 6 is outside the band but not preferred → info.
	a := NewClassifier(nil).Classify(context.Background(),
		Input{UserID: "u1", Amount: 5000, Hour: 6}, b)
	if a.Factors[2].Type != FactorInfo {
		t.Errorf("non-preferred daytime hour should be info, got %+v", a.Factors[2])
	}
	if a.UnusualTime {
		t.Error("hour 6 should not count as unusual time for scoring")
	}

	// Preferred hour → good.
	a = NewClassifier(nil).Classify(context.Background(),
		Input{UserID: "u1", Amount: 5000, Hour: 10}, b)
	if a.Factors[2].Type != FactorGood {
		t.Errorf("preferred hour should be good, got %+v", a.Factors[2])
	}
}

func TestAppendedFactors(t *testing.T) {
	f := BiometricFactor(true, 0.93)
	if f.Type != FactorGood || !strings.Contains(f.Detail, "0.93") {
		t.Errorf("biometric pass factor wrong: %+v", f)
	}
	f = BiometricFactor(false, 0.21)
	if f.Type != FactorBad {
		t.Errorf("biometric fail factor wrong: %+v", f)
	}

	f = RemoteFactor(0.42, []string{"amount above typical", "new location"})
	if f.Type != FactorInfo || !strings.Contains(f.Detail, "new location") {
		t.Errorf("remote factor wrong: %+v", f)
	}
}
