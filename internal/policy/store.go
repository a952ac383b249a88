package policy

import "context"

// Store persists per-user policies.
type Store interface {
	Get(ctx context.Context, userID string) (*Policy, error)
	Put(ctx context.Context, p *Policy) error
	Delete(ctx context.Context, userID string) error
}
