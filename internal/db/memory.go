package db

import (
	"context"
	"sync"
)

// Memory is an ephemeral backend used in tests.
type Memory struct {
	mu     sync.Mutex
	tables map[string]Table
	// FailWrites makes Replace return the given error (tests only).
	FailWrites error
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string]Table)}
}

func (m *Memory) Read(_ context.Context, name string) (Table, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[name]
	if !ok {
		return Table{}, false, nil
	}
	return t.Clone(), true, nil
}

func (m *Memory) Replace(_ context.Context, t Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	cp := t.Clone()
	cp.Revision = m.tables[t.Name].Revision + 1
	m.tables[t.Name] = cp
	return nil
}

func (m *Memory) Close() error { return nil }
