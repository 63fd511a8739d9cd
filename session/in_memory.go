// Package session provides ContextStore implementations for conversation
// state: a volatile in-memory store for tests and single-process use, and a
// Redis-backed store (see subpackage redis) for deployments that must keep
// sessions across restarts.
package session

import (
	"sync"

	"github.com/clarionhq/clarion/core"
)

// InMemoryStore is a volatile ContextStore keeping contexts in a process
// local map. It is safe for concurrent access; each returned context is a
// snapshot so the orchestrator's single-writer invariant holds.
type InMemoryStore struct {
	mu       sync.RWMutex
	contexts map[string]*core.ConversationContext
}

// NewInMemoryStore constructs an empty in-memory context store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{contexts: make(map[string]*core.ConversationContext)}
}

// Get returns an existing context (copy) or creates a new one lazily.
func (s *InMemoryStore) Get(sessionID string) (*core.ConversationContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cc, ok := s.contexts[sessionID]; ok {
		return cc.Snapshot(), nil
	}
	cc := core.NewConversationContext(sessionID)
	s.contexts[sessionID] = cc
	return cc.Snapshot(), nil
}

// Save stores a snapshot of the provided context.
func (s *InMemoryStore) Save(cc *core.ConversationContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[cc.SessionID] = cc.Snapshot()
	return nil
}

// Delete discards a session's context, typically at session end.
func (s *InMemoryStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contexts, sessionID)
	return nil
}
