package risk

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/mbd888/fraudguard/internal/idgen"
	"github.com/mbd888/fraudguard/internal/stats"
)

// Z-score tier boundaries: |z| < 2 is LOW, 2 <= |z| <= 3 is MEDIUM,
// |z| > 3 is HIGH. Lower bounds are inclusive.
const (
	MediumBound = 2.0
	HighBound   = 3.0

	// escalationMinAbsZ is the minimum |z| at which an untrusted location
	// lifts a LOW transaction to MEDIUM.
	escalationMinAbsZ = 1.5

	// Default baseline assumed for users with no amount history.
	NewUserMean   = 5000.0
	NewUserStdDev = 2000.0

	// newUserAmountCeiling: above this, a new-user transaction classifies
	// MEDIUM no matter what the assumed z-score says. The assumed baseline
	// is a guess, so neither a LOW nor a HIGH read off it is trusted.
	newUserAmountCeiling = 50000.0

	// Late-night band [23:00, 05:59] counts as unusual time.
	lateNightStart = 23
	lateNightEnd   = 5
)

// Input is the slice of a transaction the classifier reads.
type Input struct {
	UserID   string
	Amount   float64
	Location string
	Hour     int // 0..23, derived from the transaction timestamp
}

// Classifier scores transactions against a behavioral baseline.
// One classifier serves both the dashboard-statistics path and the
// submission path; the two must never drift apart.
type Classifier struct {
	store Store
}

// NewClassifier creates a classifier backed by the given audit store.
// A nil store disables the audit trail.
func NewClassifier(store Store) *Classifier {
	return &Classifier{store: store}
}

// Classify scores one transaction and returns a finalized, explained
// analysis. The risk tier is fully decided before the factors are rendered,
// so the explanation can never change the decision.
func (c *Classifier) Classify(ctx context.Context, in Input, b Baseline) *Analysis {
	mean, stdDev := b.Mean, b.StdDev
	estimated := false
	if !b.HasStats {
		mean, stdDev = NewUserMean, NewUserStdDev
		estimated = true
	}

	sd := stats.EffectiveStdDev(mean, stdDev)
	if sd != stdDev {
		estimated = true
	}
	z := stats.ZScore(in.Amount, mean, sd)
	absZ := math.Abs(z)

	level := levelForAbsZ(absZ)

	// New-user absolute override: with only an assumed baseline, a large
	// amount pins the tier to MEDIUM so the transaction gets a biometric
	// prompt instead of an outright block on guessed statistics.
	if !b.HasStats && in.Amount > newUserAmountCeiling {
		level = LevelMedium
	}

	locationMatch := true
	if len(b.TrustedLocations) > 0 {
		locationMatch = matchesAny(in.Location, b.TrustedLocations)
	}

	// One-way ratchet: an untrusted location near the MEDIUM boundary
	// escalates, never de-escalates.
	if !locationMatch && absZ >= escalationMinAbsZ && level == LevelLow {
		level = LevelMedium
	}

	unusualTime := isLateNight(in.Hour)

	a := &Analysis{
		ID:              idgen.WithPrefix("ra_"),
		UserID:          in.UserID,
		ZScore:          round3(z),
		AbsZScore:       round3(absZ),
		Level:           level,
		Outcome:         level.Outcome(),
		Action:          level.Outcome().Action(),
		ComplianceScore: ComplianceScore(z, locationMatch, unusualTime),
		LocationMatch:   locationMatch,
		UnusualTime:     unusualTime,
		Mean:            mean,
		StdDev:          sd,
		Estimated:       estimated,
		EvaluatedAt:     time.Now(),
	}
	a.Factors = buildFactors(a, in, b)

	// Persist asynchronously (best-effort audit trail).
	if c.store != nil {
		record := *a
		go func() {
			_ = c.store.Record(context.Background(), &record)
		}()
	}

	return a
}

func levelForAbsZ(absZ float64) Level {
	switch {
	case absZ > HighBound:
		return LevelHigh
	case absZ >= MediumBound:
		return LevelMedium
	default:
		return LevelLow
	}
}

// matchesAny reports whether location fuzzy-matches any candidate:
// case-insensitive substring in either direction.
func matchesAny(location string, candidates []string) bool {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return false
	}
	for _, c := range candidates {
		cand := strings.ToLower(strings.TrimSpace(c))
		if cand == "" {
			continue
		}
		if strings.Contains(loc, cand) || strings.Contains(cand, loc) {
			return true
		}
	}
	return false
}

func isLateNight(hour int) bool {
	return hour >= lateNightStart || hour <= lateNightEnd
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
