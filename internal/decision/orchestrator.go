package decision

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mbd888/fraudguard/internal/biometric"
	"github.com/mbd888/fraudguard/internal/enrich"
	"github.com/mbd888/fraudguard/internal/history"
	"github.com/mbd888/fraudguard/internal/idgen"
	"github.com/mbd888/fraudguard/internal/metrics"
	"github.com/mbd888/fraudguard/internal/policy"
	"github.com/mbd888/fraudguard/internal/profile"
	"github.com/mbd888/fraudguard/internal/retry"
	"github.com/mbd888/fraudguard/internal/risk"
	"github.com/mbd888/fraudguard/internal/syncutil"
	"github.com/mbd888/fraudguard/internal/traces"
)

const (
	defaultBiometricTimeout  = 30 * time.Second
	defaultEnrichmentTimeout = 2 * time.Second
)

// Errors
var (
	ErrInvalidTransaction = errors.New("decision: invalid transaction")
)

// Scorer classifies one transaction against a baseline.
type Scorer interface {
	Classify(ctx context.Context, in risk.Input, b risk.Baseline) *risk.Analysis
}

// Publisher fans finished assessments out to live subscribers.
type Publisher interface {
	BroadcastAssessment(data map[string]interface{})
	BroadcastPolicyBlock(data map[string]interface{})
}

// Confirmer asks the user to confirm transaction intent after a passed
// biometric check. Declining cancels the transaction.
type Confirmer interface {
	Confirm(ctx context.Context, tx Transaction) (bool, error)
}

// Config wires the orchestrator's collaborators. Policies, Profiles and
// Scorer are required; the rest degrade gracefully when nil.
type Config struct {
	Policies policy.Store
	Profiles profile.Store
	Scorer   Scorer

	Verifier  biometric.Verifier // nil: flagged transactions stay NEEDS_VERIFICATION
	Confirmer Confirmer          // nil: intent is confirmed implicitly
	Enricher  *enrich.Client     // nil or disabled: no enrichment
	History   history.Store      // nil: no transaction history
	Events    Publisher          // nil: no live feed
	Logger    *slog.Logger

	BiometricTimeout  time.Duration
	EnrichmentTimeout time.Duration
}

// Orchestrator runs transactions through policy enforcement, risk scoring,
// and step-up verification.
type Orchestrator struct {
	cfg       Config
	log       *slog.Logger
	userLocks syncutil.ShardedMutex
}

// NewOrchestrator creates an orchestrator from the given config.
func NewOrchestrator(cfg Config) *Orchestrator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.BiometricTimeout <= 0 {
		cfg.BiometricTimeout = defaultBiometricTimeout
	}
	if cfg.EnrichmentTimeout <= 0 {
		cfg.EnrichmentTimeout = defaultEnrichmentTimeout
	}
	return &Orchestrator{cfg: cfg, log: cfg.Logger}
}

// Assess runs one transaction through the full pipeline and returns its
// terminal assessment. Policy and profile are loaded fresh on every call so
// an edit between two submissions always applies to the second.
func (o *Orchestrator) Assess(ctx context.Context, tx Transaction) (*Assessment, error) {
	started := time.Now()

	if tx.UserID == "" || tx.Amount <= 0 {
		return nil, ErrInvalidTransaction
	}
	if tx.ID == "" {
		tx.ID = idgen.WithPrefix("txn_")
	}
	if tx.At.IsZero() {
		tx.At = time.Now()
	}

	ctx, span := traces.StartSpan(ctx, "decision.assess",
		traces.TransactionID(tx.ID),
		traces.UserID(tx.UserID),
		traces.Amount(tx.Amount),
	)
	defer span.End()

	// Assessments for the same user run serially so two concurrent
	// submissions cannot race the profile read-modify-write.
	unlock := o.userLocks.Lock(tx.UserID)
	defer unlock()

	a := &Assessment{
		TransactionID: tx.ID,
		UserID:        tx.UserID,
		Amount:        tx.Amount,
		Location:      tx.Location,
		State:         StateSubmitted,
	}

	// Stage 1: hard policy wall.
	a.State = StatePolicyCheck
	pol, err := o.cfg.Policies.Get(ctx, tx.UserID)
	if err != nil && !errors.Is(err, policy.ErrNotFound) {
		return nil, err
	}
	polRes := policy.Enforce(pol, policy.CheckInput{
		Amount:   tx.Amount,
		Location: tx.Location,
		At:       tx.At,
	})
	a.PolicyResult = polRes

	if !polRes.Allowed {
		a.State = StatePolicyBlocked
		o.finish(a, started)
		for _, v := range polRes.Violations {
			metrics.PolicyViolationsTotal.WithLabelValues(v.Policy).Inc()
		}
		if o.cfg.Events != nil {
			o.cfg.Events.BroadcastPolicyBlock(map[string]interface{}{
				"transactionId": tx.ID,
				"userId":        tx.UserID,
				"amount":        tx.Amount,
				"violations":    len(polRes.Violations),
			})
		}
		o.log.Info("transaction blocked by policy",
			"txn", tx.ID, "user", tx.UserID, "violations", len(polRes.Violations))
		return a, nil
	}

	// Stage 2: behavioral risk judgment.
	prof, err := o.cfg.Profiles.Get(ctx, tx.UserID)
	if err != nil && !errors.Is(err, profile.ErrNotFound) {
		return nil, err
	}
	analysis := o.cfg.Scorer.Classify(ctx, risk.Input{
		UserID:   tx.UserID,
		Amount:   tx.Amount,
		Location: tx.Location,
		Hour:     tx.Hour(),
	}, prof.Baseline())
	a.RiskAnalysis = analysis
	a.State = StateRiskScored
	span.SetAttributes(traces.RiskLevel(string(analysis.Level)))

	switch analysis.Level {
	case risk.LevelLow:
		a.State = StateVerified
	case risk.LevelMedium, risk.LevelHigh:
		a.State = o.verify(ctx, tx, a)
	}

	o.recordOutcome(ctx, tx, prof, a)
	o.enrichAssessment(tx, a)
	o.finish(a, started)

	metrics.RiskLevelsTotal.WithLabelValues(string(analysis.Level)).Inc()
	metrics.ComplianceScores.Observe(float64(analysis.ComplianceScore))

	if o.cfg.Events != nil {
		o.cfg.Events.BroadcastAssessment(map[string]interface{}{
			"transactionId": tx.ID,
			"userId":        tx.UserID,
			"amount":        tx.Amount,
			"state":         string(a.State),
			"riskLevel":     string(analysis.Level),
			"zScore":        analysis.ZScore,
		})
	}
	o.log.Info("transaction assessed",
		"txn", tx.ID, "user", tx.UserID, "state", a.State,
		"level", analysis.Level, "z", analysis.ZScore)
	return a, nil
}

// verify runs the biometric prompt for a flagged transaction, then asks the
// user to confirm intent. A timeout or failure blocks; a cancelled prompt or
// a declined confirmation is reported as cancelled.
func (o *Orchestrator) verify(ctx context.Context, tx Transaction, a *Assessment) State {
	if o.cfg.Verifier == nil {
		return StateNeedsVerification
	}

	vctx, cancel := context.WithTimeout(ctx, o.cfg.BiometricTimeout)
	defer cancel()

	res, err := o.cfg.Verifier.Verify(vctx, tx.UserID)
	switch {
	case errors.Is(err, context.Canceled):
		metrics.BiometricPromptsTotal.WithLabelValues("cancelled").Inc()
		return StateCancelled
	case err != nil:
		// Not enrolled, timed out, or the device failed: never a pass.
		metrics.BiometricPromptsTotal.WithLabelValues("error").Inc()
		o.log.Warn("biometric verification failed", "txn", tx.ID, "user", tx.UserID, "error", err)
		return StateBlockedBiometric
	}

	a.Biometric = &res
	a.RiskAnalysis.Factors = append(a.RiskAnalysis.Factors,
		risk.BiometricFactor(res.Passed, res.Confidence))
	if !res.Passed {
		metrics.BiometricPromptsTotal.WithLabelValues("failed").Inc()
		return StateBlockedBiometric
	}
	metrics.BiometricPromptsTotal.WithLabelValues("passed").Inc()

	if o.cfg.Confirmer != nil {
		ok, err := o.cfg.Confirmer.Confirm(vctx, tx)
		if err != nil {
			o.log.Warn("intent confirmation failed", "txn", tx.ID, "user", tx.UserID, "error", err)
		}
		if err != nil || !ok {
			return StateCancelled
		}
	}
	return StateVerifiedBiometric
}

// recordOutcome updates the user's profile and appends the transaction to
// history. Only approved outcomes are recorded at all, and only approved
// low-risk transactions feed the learned baseline; a blocked or cancelled
// transaction must leave no trace in the histogram or the history a future
// re-baseline would read.
func (o *Orchestrator) recordOutcome(ctx context.Context, tx Transaction, prof *profile.Profile, a *Assessment) {
	if !a.State.Approved() {
		return
	}
	if prof == nil {
		prof = profile.New(tx.UserID, false)
	}
	updateBaseline := prof.LearningEnabled && a.RiskAnalysis.Level == risk.LevelLow
	prof.Observe(tx.Amount, tx.Hour(), updateBaseline)
	if err := o.cfg.Profiles.Put(ctx, prof); err != nil {
		o.log.Warn("failed to update profile", "user", tx.UserID, "error", err)
	}

	if o.cfg.History != nil {
		rec := &history.Record{
			ID:        tx.ID,
			UserID:    tx.UserID,
			Amount:    tx.Amount,
			Location:  tx.Location,
			Hour:      tx.Hour(),
			State:     string(a.State),
			RiskLevel: string(a.RiskAnalysis.Level),
			CreatedAt: time.Now(),
		}
		// Best-effort audit trail; never blocks the response.
		go func() {
			err := retry.Do(context.Background(), 3, 100*time.Millisecond, func() error {
				return o.cfg.History.Append(context.Background(), rec)
			})
			if err != nil {
				o.log.Warn("failed to record transaction", "txn", rec.ID, "error", err)
			}
		}()
	}
}

// enrichAssessment asks the external scorer for advisory signals. The
// decision is already final; failures are logged and swallowed.
func (o *Orchestrator) enrichAssessment(tx Transaction, a *Assessment) {
	if !o.cfg.Enricher.Enabled() {
		return
	}

	ectx, cancel := context.WithTimeout(context.Background(), o.cfg.EnrichmentTimeout)
	defer cancel()

	sig, err := o.cfg.Enricher.Assess(ectx, enrich.Features{
		UserID:   tx.UserID,
		Amount:   tx.Amount,
		Location: tx.Location,
		Hour:     tx.Hour(),
		ZScore:   a.RiskAnalysis.ZScore,
	})
	if err != nil {
		metrics.EnrichmentRequestsTotal.WithLabelValues("error").Inc()
		o.log.Warn("enrichment failed", "txn", tx.ID, "error", err)
		return
	}
	metrics.EnrichmentRequestsTotal.WithLabelValues("ok").Inc()
	a.Enrichment = sig
	a.RiskAnalysis.Factors = append(a.RiskAnalysis.Factors,
		risk.RemoteFactor(sig.RiskScore, sig.Reasons))
}

func (o *Orchestrator) finish(a *Assessment, started time.Time) {
	a.AssessedAt = time.Now()
	metrics.AssessmentsTotal.WithLabelValues(string(a.State)).Inc()
	metrics.AssessmentDuration.Observe(time.Since(started).Seconds())
}
