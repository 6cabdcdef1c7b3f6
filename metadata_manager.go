package beacon

import "sync"

// MetadataManager manages global metadata attached to every outgoing event
// (app version, platform, locale and the like).
type MetadataManager struct {
	metadata map[string]any
	mu       sync.RWMutex
}

// NewMetadataManager creates a new metadata manager
func NewMetadataManager() *MetadataManager {
	return &MetadataManager{
		metadata: make(map[string]any),
	}
}

// Set sets a metadata value
func (m *MetadataManager) Set(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata[key] = value
}

// Get gets a metadata value
func (m *MetadataManager) Get(key string) any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metadata[key]
}

// GetAll returns all metadata as a copy, or nil when none is set.
func (m *MetadataManager) GetAll() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.metadata) == 0 {
		return nil
	}

	result := make(map[string]any, len(m.metadata))
	for k, v := range m.metadata {
		result[k] = v
	}
	return result
}

// Clear removes all metadata
func (m *MetadataManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata = make(map[string]any)
}
