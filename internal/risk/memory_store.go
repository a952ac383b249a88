package risk

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory implementation of Store for demo/test use.
type MemoryStore struct {
	mu       sync.RWMutex
	analyses map[string][]*Analysis // userID → analyses
}

// NewMemoryStore creates an in-memory analysis store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		analyses: make(map[string][]*Analysis),
	}
}

func (s *MemoryStore) Record(ctx context.Context, a *Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *a
	cp.Factors = append([]Factor(nil), a.Factors...)
	s.analyses[a.UserID] = append(s.analyses[a.UserID], &cp)
	return nil
}

func (s *MemoryStore) ListByUser(ctx context.Context, userID string, limit int) ([]*Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.analyses[userID]
	if len(all) == 0 {
		return nil, nil
	}

	// Most recent first, up to limit.
	start := len(all) - limit
	if start < 0 {
		start = 0
	}

	result := make([]*Analysis, 0, len(all)-start)
	for i := len(all) - 1; i >= start; i-- {
		cp := *all[i]
		cp.Factors = append([]Factor(nil), all[i].Factors...)
		result = append(result, &cp)
	}
	return result, nil
}
