package drafts

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu     sync.Mutex
	drafts map[string]Draft
}

// NewMemoryStore creates an empty in-memory draft store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[string]Draft)}
}

var _ Store = (*MemoryStore)(nil)

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, draft Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[draft.Address] = draft
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, address string) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if draft, ok := s.drafts[address]; ok {
		return &draft, nil
	}
	return nil, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, address)
	return nil
}
