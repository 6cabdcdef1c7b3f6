package beacon

import "sync"

// Mutex provides mutual exclusion for flush operations so a reconnect flush
// and an explicit FlushEvents call never interleave sends.
type Mutex struct {
	mu sync.Mutex
}

// NewMutex creates a new mutex
func NewMutex() *Mutex {
	return &Mutex{}
}

// RunAtomic executes a task with exclusive lock
func (m *Mutex) RunAtomic(task func() error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return task()
}
