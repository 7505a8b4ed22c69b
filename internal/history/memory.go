package history

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store. It backs tests and local development
// where no storage account is available.
type MemoryStore struct {
	mu    sync.Mutex
	turns map[string][]Turn
}

// NewMemoryStore creates an empty in-memory history store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{turns: make(map[string][]Turn)}
}

var _ Store = (*MemoryStore)(nil)

// Append implements Store. Sequence assignment happens under the lock, so
// concurrent appenders never collide.
func (s *MemoryStore) Append(_ context.Context, conversationID string, role Role, text string) (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turn := Turn{
		ConversationID: conversationID,
		Sequence:       len(s.turns[conversationID]),
		Role:           role,
		Text:           text,
	}
	s.turns[conversationID] = append(s.turns[conversationID], turn)
	return turn, nil
}

// Read implements Store.
func (s *MemoryStore) Read(_ context.Context, conversationID string) ([]Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.turns[conversationID]
	out := make([]Turn, len(stored))
	copy(out, stored)
	return out, nil
}
