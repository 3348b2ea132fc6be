// Package conversation persists chat history between pipeline runs so a
// session's prior turns can seed the next run's state.
package conversation

import (
	"context"
	"sync"

	"github.com/Ankitchan/sast-ai-agent/types"
)

// Store persists per-session message history. Append adds messages to
// the end of a session's log; History returns the full log in append
// order.
type Store interface {
	Append(ctx context.Context, sessionID string, messages ...types.Message) error
	History(ctx context.Context, sessionID string) ([]types.Message, error)
	Clear(ctx context.Context, sessionID string) error
}

// MemoryStore keeps histories in process memory. Used for tests and
// single-process deployments without Redis.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]types.Message
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]types.Message)}
}

// Append implements Store.
func (s *MemoryStore) Append(ctx context.Context, sessionID string, messages ...types.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], messages...)
	return nil
}

// History implements Store.
func (s *MemoryStore) History(ctx context.Context, sessionID string) ([]types.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.sessions[sessionID]
	out := make([]types.Message, len(history))
	copy(out, history)
	return out, nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
