package memory

import (
	"context"
	"sync"

	"supportbot/internal/domain"
	"supportbot/internal/session"
)

// Store keeps conversation contexts in process memory. Values are copied
// in and out so callers never share slices with the store.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]domain.ConversationContext
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]domain.ConversationContext)}
}

// Load returns the stored context, or an empty one for an unknown session.
func (s *Store) Load(_ context.Context, id string) (domain.ConversationContext, error) {
	if id == "" {
		return domain.ConversationContext{}, session.ErrEmptySessionID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id].Clone(), nil
}

func (s *Store) Save(_ context.Context, id string, c domain.ConversationContext) error {
	if id == "" {
		return session.ErrEmptySessionID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = c.Clone()
	return nil
}

func (s *Store) Clear(_ context.Context, id string) error {
	if id == "" {
		return session.ErrEmptySessionID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
