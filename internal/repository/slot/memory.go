package slot

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

// Memory keeps slots in process memory.
type Memory struct {
	mu     sync.RWMutex
	scopes map[string]map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{scopes: make(map[string]map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, scope, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.scopes[scope][key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Set(_ context.Context, scope, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scopes[scope] == nil {
		m.scopes[scope] = make(map[string][]byte)
	}
	m.scopes[scope][key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Remove(_ context.Context, scope, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.scopes[scope], key)
	return nil
}
