package memory

import (
	"context"
	"sync"

	"github.com/hupe1980/agentrelay/core"
)

// InMemoryStore is a process-local Store backed by a map. Suitable for tests,
// examples and single-process hosts; swap for a database-backed Store when
// histories must survive the process.
//
// Concurrency: protected by RWMutex. Load returns a copy so callers can hold
// the slice across later appends without aliasing.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]core.Message
}

// Compile-time assertion.
var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty in-memory transcript store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string][]core.Message)}
}

// Load implements Store.
func (s *InMemoryStore) Load(_ context.Context, sessionKey string) ([]core.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.sessions[sessionKey]
	out := make([]core.Message, len(history))
	copy(out, history)

	return out, nil
}

// Append implements Store. The whole batch is committed under one lock
// acquisition, so concurrent readers never observe a partial batch.
func (s *InMemoryStore) Append(_ context.Context, sessionKey string, msgs []core.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionKey] = append(s.sessions[sessionKey], msgs...)

	return nil
}

// Clear implements Store.
func (s *InMemoryStore) Clear(_ context.Context, sessionKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionKey)

	return nil
}

// Len returns the number of persisted messages for the session.
func (s *InMemoryStore) Len(sessionKey string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions[sessionKey])
}
