// Package history records assessed transactions per user and handles bulk
// history uploads that seed a user's baseline statistics.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/mbd888/fraudguard/internal/pagination"
)

// Errors
var (
	ErrNotFound = errors.New("history: not found")
)

// Record is one assessed transaction as kept for a user's history view.
// Policy-blocked transactions are never recorded.
type Record struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Amount    float64   `json:"amount"`
	Location  string    `json:"location,omitempty"`
	Hour      int       `json:"hour"`
	State     string    `json:"state"`
	RiskLevel string    `json:"riskLevel"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListOption configures optional parameters for list queries.
type ListOption func(*listOpts)

type listOpts struct {
	cursor *pagination.Cursor
}

func applyListOpts(opts []ListOption) listOpts {
	var o listOpts
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// WithCursor filters results to records after the given cursor position.
func WithCursor(cursor string) ListOption {
	return func(o *listOpts) {
		c, err := pagination.Decode(cursor)
		if err == nil {
			o.cursor = c
		}
	}
}

// Store persists transaction records.
type Store interface {
	// Append adds a record to a user's history.
	Append(ctx context.Context, rec *Record) error

	// ListByUser returns a user's most recent records, newest first.
	ListByUser(ctx context.Context, userID string, limit int, opts ...ListOption) ([]*Record, error)

	// AmountsByUser returns all recorded amounts for a user, oldest first.
	AmountsByUser(ctx context.Context, userID string) ([]float64, error)

	// ListUsers returns every user with at least one record.
	ListUsers(ctx context.Context) ([]string, error)
}
