package profile

import "context"

// Store persists user profiles.
type Store interface {
	// Get loads a profile. Returns ErrNotFound when the user has none.
	Get(ctx context.Context, userID string) (*Profile, error)

	// Put saves or replaces a profile.
	Put(ctx context.Context, p *Profile) error

	// Delete removes a profile. Returns ErrNotFound when absent.
	Delete(ctx context.Context, userID string) error
}
