package session

import (
	"context"
	"encoding/json"
	"sync"
)

// Memory keeps sessions in process. Values are stored encoded so callers never
// share a *Session across requests.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, token string) (*Session, error) {
	m.mu.Lock()
	raw, ok := m.data[token]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *Memory) Save(_ context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[s.Token] = raw
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	delete(m.data, token)
	m.mu.Unlock()
	return nil
}
