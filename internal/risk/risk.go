// Package risk implements deterministic, explainable transaction risk scoring.
//
// Every transaction is scored against the user's historical spending baseline
// with a signed z-score, mapped to a three-tier risk level, and explained with
// an ordered list of human-readable factors. There is no black-box model: the
// same inputs always produce the same analysis.
package risk

import (
	"context"
	"time"
)

// Level is the three-tier ordinal risk classification.
type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

// Rank returns the ordinal position of the level (LOW=0, MEDIUM=1, HIGH=2).
func (l Level) Rank() int {
	switch l {
	case LevelMedium:
		return 1
	case LevelHigh:
		return 2
	default:
		return 0
	}
}

// Outcome is the user-facing decision vocabulary.
type Outcome string

const (
	OutcomeVerified Outcome = "VERIFIED"
	OutcomeFlagged  Outcome = "FLAGGED"
	OutcomeBlocked  Outcome = "BLOCKED"
)

// Action is the backend decision vocabulary. The two vocabularies denote the
// same three ordinal tiers; all logic branches on Level, never on which
// vocabulary a caller reads.
type Action string

const (
	ActionAllow Action = "ALLOW"
	ActionDelay Action = "DELAY"
	ActionBlock Action = "BLOCK"
)

// Outcome returns the user-facing decision for a risk level.
func (l Level) Outcome() Outcome {
	switch l {
	case LevelMedium:
		return OutcomeFlagged
	case LevelHigh:
		return OutcomeBlocked
	default:
		return OutcomeVerified
	}
}

// Action returns the backend decision equivalent of an outcome.
func (o Outcome) Action() Action {
	switch o {
	case OutcomeFlagged:
		return ActionDelay
	case OutcomeBlocked:
		return ActionBlock
	default:
		return ActionAllow
	}
}

// FactorType classifies a single explanation line.
type FactorType string

const (
	FactorGood FactorType = "good"
	FactorWarn FactorType = "warn"
	FactorInfo FactorType = "info"
	FactorBad  FactorType = "bad"
)

// Factor is one human-readable justification line. Order is significant:
// amount first, then location, then time, then any appended biometric or
// remote-assessment insights, so the explanation reads as a narrative.
type Factor struct {
	Type    FactorType `json:"type"`
	Message string     `json:"message"`
	Detail  string     `json:"detail,omitempty"`
}

// Baseline carries the behavioral profile inputs the classifier reads.
// HasStats is false for new users (no amount history); the classifier then
// assumes the default mean/stddev and applies the absolute-amount override.
type Baseline struct {
	Mean             float64
	StdDev           float64
	HasStats         bool
	TrustedLocations []string
	PreferredHours   []int
}

// Analysis is the result of scoring a single transaction. It is immutable
// once returned; a re-assessment produces a new Analysis.
type Analysis struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	ZScore          float64   `json:"zScore"`
	AbsZScore       float64   `json:"absZScore"`
	Level           Level     `json:"riskLevel"`
	Outcome         Outcome   `json:"decision"`
	Action          Action    `json:"action"`
	ComplianceScore int       `json:"complianceScore"`
	Factors         []Factor  `json:"factors"`
	LocationMatch   bool      `json:"locationMatch"`
	UnusualTime     bool      `json:"unusualTime"`
	Mean            float64   `json:"mean"`
	StdDev          float64   `json:"stdDev"`
	Estimated       bool      `json:"estimated"`
	EvaluatedAt     time.Time `json:"evaluatedAt"`
}

// Store persists analyses for the audit trail.
type Store interface {
	Record(ctx context.Context, a *Analysis) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*Analysis, error)
}
