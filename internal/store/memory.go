package store

import "sync"

// Memory is an in-memory journal.
type Memory struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemory creates a new in-memory journal.
func NewMemory() *Memory {
	return &Memory{}
}

// Append records an entry.
func (m *Memory) Append(e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

// Entries returns a copy of the recorded entries.
func (m *Memory) Entries() ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

// Close is a no-op for the memory journal.
func (m *Memory) Close() error {
	return nil
}
