package history

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory history store for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]*Record // userID -> records, oldest first
}

// NewMemoryStore creates an empty in-memory history store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]*Record)}
}

func (s *MemoryStore) Append(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.records[rec.UserID] = append(s.records[rec.UserID], &cp)
	return nil
}

func (s *MemoryStore) ListByUser(ctx context.Context, userID string, limit int, opts ...ListOption) ([]*Record, error) {
	o := applyListOpts(opts)

	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.records[userID]
	if limit <= 0 {
		limit = len(recs)
	}

	// Newest first, resuming after the cursor position if one was given.
	out := make([]*Record, 0, limit)
	for i := len(recs) - 1; i >= 0 && len(out) < limit; i-- {
		rec := recs[i]
		if o.cursor != nil {
			if rec.CreatedAt.After(o.cursor.CreatedAt) {
				continue
			}
			if rec.CreatedAt.Equal(o.cursor.CreatedAt) && rec.ID >= o.cursor.ID {
				continue
			}
		}
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) AmountsByUser(ctx context.Context, userID string) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.records[userID]
	amounts := make([]float64, len(recs))
	for i, r := range recs {
		amounts[i] = r.Amount
	}
	return amounts, nil
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]string, 0, len(s.records))
	for userID := range s.records {
		users = append(users, userID)
	}
	return users, nil
}
