// Package decision orchestrates the full transaction pipeline: hard policy
// enforcement first, behavioral risk scoring second, then step-up
// verification for everything above the low band.
//
// Policy is a wall, risk is a judgment. A policy block is terminal and the
// classifier never sees the transaction; a risk outcome can still be
// redeemed or condemned by the biometric prompt.
package decision

import (
	"time"

	"github.com/mbd888/fraudguard/internal/biometric"
	"github.com/mbd888/fraudguard/internal/enrich"
	"github.com/mbd888/fraudguard/internal/policy"
	"github.com/mbd888/fraudguard/internal/risk"
)

// State is a step in the assessment lifecycle.
type State string

const (
	StateSubmitted     State = "SUBMITTED"
	StatePolicyCheck   State = "POLICY_CHECK"
	StatePolicyBlocked State = "POLICY_BLOCKED"
	StateRiskScored    State = "RISK_SCORED"

	// Terminal outcomes of the risk judgment.
	StateVerified          State = "VERIFIED"
	StateNeedsVerification State = "NEEDS_VERIFICATION"

	// Terminal outcomes of the biometric prompt.
	StateVerifiedBiometric State = "VERIFIED_VIA_BIOMETRIC"
	StateBlockedBiometric  State = "BLOCKED_BIOMETRIC_FAIL"
	StateCancelled         State = "CANCELLED_BY_USER"
)

// Terminal reports whether the state ends the pipeline.
func (s State) Terminal() bool {
	switch s {
	case StatePolicyBlocked, StateVerified, StateNeedsVerification,
		StateVerifiedBiometric, StateBlockedBiometric, StateCancelled:
		return true
	}
	return false
}

// Approved reports whether the transaction may proceed.
func (s State) Approved() bool {
	return s == StateVerified || s == StateVerifiedBiometric
}

// Transaction is one submitted transaction.
type Transaction struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	Amount   float64   `json:"amount"`
	Location string    `json:"location,omitempty"`
	At       time.Time `json:"at"`
}

// Hour returns the transaction's local hour of day.
func (t Transaction) Hour() int {
	return t.At.Hour()
}

// Assessment is the full outcome of one pipeline run.
type Assessment struct {
	TransactionID string            `json:"transactionId"`
	UserID        string            `json:"userId"`
	Amount        float64           `json:"amount"`
	Location      string            `json:"location,omitempty"`
	State         State             `json:"state"`
	PolicyResult  *policy.Result    `json:"policyResult,omitempty"`
	RiskAnalysis  *risk.Analysis    `json:"riskAnalysis,omitempty"`
	Biometric     *biometric.Result `json:"biometric,omitempty"`
	Enrichment    *enrich.Signal    `json:"enrichment,omitempty"`
	AssessedAt    time.Time         `json:"assessedAt"`
}
