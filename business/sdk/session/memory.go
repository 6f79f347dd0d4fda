package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore implements the Store interface in memory. Used by tests and
// the admin tooling where no Redis instance exists.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]uuid.UUID
}

// NewMemoryStore constructs an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]uuid.UUID),
	}
}

// ActiveWorkgroup returns the workgroup stored for the session.
func (s *MemoryStore) ActiveWorkgroup(_ context.Context, sessionID string) (uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.values[sessionID]
	if !exists {
		return uuid.Nil, ErrNoValue
	}

	return id, nil
}

// SetActiveWorkgroup stores the workgroup for the session.
func (s *MemoryStore) SetActiveWorkgroup(_ context.Context, sessionID string, workgroupID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[sessionID] = workgroupID

	return nil
}
