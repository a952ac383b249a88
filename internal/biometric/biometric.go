// Package biometric abstracts the step-up verification prompt used when an
// assessment lands above the low-risk band.
package biometric

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Errors
var (
	ErrNotEnrolled = errors.New("biometric: user not enrolled")
)

// Result is the outcome of one verification prompt.
type Result struct {
	Passed     bool    `json:"passed"`
	Confidence float64 `json:"confidence"`
}

// Verifier prompts a user for biometric verification. Implementations must
// honor context cancellation; a cancelled or timed-out prompt is a failure,
// never a pass.
type Verifier interface {
	Verify(ctx context.Context, userID string) (Result, error)
}

// SimVerifier is a deterministic in-process verifier for development and
// demos. Enrolled users pass with a fixed confidence; specific outcomes can
// be scripted per user.
type SimVerifier struct {
	mu       sync.RWMutex
	enrolled map[string]Result
	latency  time.Duration
}

// NewSimVerifier creates a simulated verifier with no enrolled users.
func NewSimVerifier(latency time.Duration) *SimVerifier {
	return &SimVerifier{
		enrolled: make(map[string]Result),
		latency:  latency,
	}
}

// Enroll registers a user who will pass verification with high confidence.
func (v *SimVerifier) Enroll(userID string) {
	v.SetOutcome(userID, Result{Passed: true, Confidence: 0.95})
}

// SetOutcome scripts the result returned for a user.
func (v *SimVerifier) SetOutcome(userID string, r Result) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.enrolled[userID] = r
}

func (v *SimVerifier) Verify(ctx context.Context, userID string) (Result, error) {
	if v.latency > 0 {
		select {
		case <-time.After(v.latency):
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	r, ok := v.enrolled[userID]
	if !ok {
		return Result{}, ErrNotEnrolled
	}
	return r, nil
}
