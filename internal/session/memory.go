package session

import (
	"context"
	"sync"
)

// MemoryStore keeps the session for the lifetime of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	current *Session
}

// NewMemoryStore creates an in-process session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns the current session.
func (m *MemoryStore) Get(ctx context.Context) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return nil, ErrNotFound
	}
	s := *m.current
	return &s, nil
}

// Put replaces the current session.
func (m *MemoryStore) Put(ctx context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = &s
	return nil
}

// Clear removes the current session.
func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = nil
	return nil
}

// Close is a no-op for the memory store.
func (m *MemoryStore) Close() error {
	return nil
}
