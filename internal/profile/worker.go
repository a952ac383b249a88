package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/mbd888/fraudguard/internal/stats"
)

// A user needs at least this many recorded transactions before a periodic
// refit replaces their online baseline.
const rebaselineMinSamples = 5

// AmountSource lists users with recorded transactions and their amounts.
// The transaction history store satisfies this.
type AmountSource interface {
	ListUsers(ctx context.Context) ([]string, error)
	AmountsByUser(ctx context.Context, userID string) ([]float64, error)
}

// RebaselineWorker periodically refits baselines from recorded history for
// users who opted into learning. The refit drops extreme outliers, so a
// baseline skewed by a few anomalous-but-approved transactions heals over
// time.
type RebaselineWorker struct {
	profiles Store
	source   AmountSource
	logger   *slog.Logger
	interval time.Duration
	stop     chan struct{}
	running  atomic.Bool
}

// NewRebaselineWorker creates a periodic baseline refit worker.
func NewRebaselineWorker(profiles Store, source AmountSource, interval time.Duration, logger *slog.Logger) *RebaselineWorker {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RebaselineWorker{
		profiles: profiles,
		source:   source,
		logger:   logger,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Running reports whether the worker loop is active.
func (w *RebaselineWorker) Running() bool {
	return w.running.Load()
}

// Start runs the periodic refit until the context is cancelled or Stop is called.
func (w *RebaselineWorker) Start(ctx context.Context) {
	w.running.Store(true)
	defer w.running.Store(false)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-ticker.C:
			w.safeDoWork(ctx, w.recompute)
		}
	}
}

// Stop signals the worker to stop.
func (w *RebaselineWorker) Stop() {
	select {
	case w.stop <- struct{}{}:
	default:
	}
}

func (w *RebaselineWorker) safeDoWork(ctx context.Context, fn func(context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("panic in rebaseline worker", "panic", fmt.Sprint(r))
		}
	}()
	fn(ctx)
}

// recompute refits the baseline of every learning-enabled user with enough
// recorded history.
func (w *RebaselineWorker) recompute(ctx context.Context) {
	users, err := w.source.ListUsers(ctx)
	if err != nil {
		w.logger.Error("rebaseline: failed to list users", "error", err)
		return
	}

	var refit int
	for _, userID := range users {
		p, err := w.profiles.Get(ctx, userID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			w.logger.Warn("rebaseline: failed to load profile", "user", userID, "error", err)
			continue
		}
		if !p.LearningEnabled {
			continue
		}

		amounts, err := w.source.AmountsByUser(ctx, userID)
		if err != nil {
			w.logger.Warn("rebaseline: failed to load amounts", "user", userID, "error", err)
			continue
		}
		if len(amounts) < rebaselineMinSamples {
			continue
		}

		summary := stats.Rebaseline(amounts)
		if summary.Count == 0 {
			continue
		}
		p.SetStats(summary)
		if err := w.profiles.Put(ctx, p); err != nil {
			w.logger.Warn("rebaseline: failed to save profile", "user", userID, "error", err)
			continue
		}
		refit++
	}

	if refit > 0 {
		w.logger.Info("baselines refit from history", "users", refit)
	}
}
