package adapters

import (
	"context"
	"sync"
)

// MemoryStorageAdapter keeps the session record in process memory. Useful
// for tests and for hosts that have no durable storage; the session will not
// survive a restart.
type MemoryStorageAdapter struct {
	mu     sync.Mutex
	record *SessionRecord
}

// Ensure MemoryStorageAdapter implements StorageAdapter interface
var _ StorageAdapter = (*MemoryStorageAdapter)(nil)

// NewMemoryStorageAdapter creates a new in-memory storage adapter.
func NewMemoryStorageAdapter() *MemoryStorageAdapter {
	return &MemoryStorageAdapter{}
}

func (m *MemoryStorageAdapter) Save(_ context.Context, record SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := record
	m.record = &copied
	return nil
}

func (m *MemoryStorageAdapter) Load(_ context.Context) (*SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.record == nil {
		return nil, nil
	}
	copied := *m.record
	return &copied, nil
}

func (m *MemoryStorageAdapter) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record = nil
	return nil
}
