package policy

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of Store for demo/test use.
type MemoryStore struct {
	mu       sync.RWMutex
	policies map[string]*Policy
}

// NewMemoryStore creates an in-memory policy store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{policies: make(map[string]*Policy)}
}

func (s *MemoryStore) Get(ctx context.Context, userID string) (*Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.policies[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := clonePolicy(p)
	return cp, nil
}

func (s *MemoryStore) Put(ctx context.Context, p *Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := clonePolicy(p)
	cp.UpdatedAt = time.Now()
	s.policies[p.UserID] = cp
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.policies[userID]; !ok {
		return ErrNotFound
	}
	delete(s.policies, userID)
	return nil
}

func clonePolicy(p *Policy) *Policy {
	cp := *p
	cp.AllowedLocations = append([]string(nil), p.AllowedLocations...)
	if p.MaxAmount != nil {
		v := *p.MaxAmount
		cp.MaxAmount = &v
	}
	if p.AllowedTimeRange != nil {
		tr := *p.AllowedTimeRange
		cp.AllowedTimeRange = &tr
	}
	return &cp
}
