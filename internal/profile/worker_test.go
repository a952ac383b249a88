package profile

import (
	"context"
	"testing"
	"time"

	"github.com/mbd888/fraudguard/internal/stats"
)

type fakeAmountSource struct {
	amounts map[string][]float64
}

func (s *fakeAmountSource) ListUsers(ctx context.Context) ([]string, error) {
	users := make([]string, 0, len(s.amounts))
	for u := range s.amounts {
		users = append(users, u)
	}
	return users, nil
}

func (s *fakeAmountSource) AmountsByUser(ctx context.Context, userID string) ([]float64, error) {
	return s.amounts[userID], nil
}

func TestRebaselineWorkerRefitsFromHistory(t *testing.T) {
	profiles := NewMemoryStore()

	p := New("u1", true)
	// Seed a baseline skewed by the outlier, as online learning would leave it.
	p.SetStats(stats.Compute([]float64{100, 100, 100, 100, 10000}))
	if err := profiles.Put(t.Context(), p); err != nil {
		t.Fatal(err)
	}

	source := &fakeAmountSource{amounts: map[string][]float64{
		"u1": {100, 100, 100, 100, 10000},
	}}

	w := NewRebaselineWorker(profiles, source, time.Hour, nil)
	w.recompute(t.Context())

	got, err := profiles.Get(t.Context(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	// The outlier must have been dropped by the refit.
	if got.AmountMean != 100 {
		t.Errorf("mean = %v, want 100", got.AmountMean)
	}
	if got.AmountCount != 4 {
		t.Errorf("count = %v, want 4", got.AmountCount)
	}
}

func TestRebaselineWorkerSkipsWithoutConsent(t *testing.T) {
	profiles := NewMemoryStore()

	p := New("u1", false)
	p.Observe(500, 12, false)
	if err := profiles.Put(t.Context(), p); err != nil {
		t.Fatal(err)
	}

	source := &fakeAmountSource{amounts: map[string][]float64{
		"u1": {100, 100, 100, 100, 100},
	}}

	w := NewRebaselineWorker(profiles, source, time.Hour, nil)
	w.recompute(t.Context())

	got, _ := profiles.Get(t.Context(), "u1")
	if got.HasStats() {
		t.Error("profile without learning consent must not be refit")
	}
}

func TestRebaselineWorkerSkipsThinHistory(t *testing.T) {
	profiles := NewMemoryStore()
	if err := profiles.Put(t.Context(), New("u1", true)); err != nil {
		t.Fatal(err)
	}

	source := &fakeAmountSource{amounts: map[string][]float64{
		"u1": {100, 100},
	}}

	w := NewRebaselineWorker(profiles, source, time.Hour, nil)
	w.recompute(t.Context())

	got, _ := profiles.Get(t.Context(), "u1")
	if got.HasStats() {
		t.Error("two samples are not enough for a refit")
	}
}

func TestRebaselineWorkerLifecycle(t *testing.T) {
	w := NewRebaselineWorker(NewMemoryStore(), &fakeAmountSource{}, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for !w.Running() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !w.Running() {
		t.Fatal("worker did not start")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on context cancel")
	}
	if w.Running() {
		t.Error("worker still reports running after stop")
	}
}
