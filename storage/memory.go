package storage

import (
	"context"
	"sync"
)

// Memory keeps tokens in process memory. It is the default backend and the
// one used by tests.
type Memory struct {
	mu     sync.RWMutex
	key    string
	tokens map[string]string
}

// NewMemory returns an empty [Memory] store for key.
func NewMemory(key string) *Memory {
	return &Memory{key: key, tokens: make(map[string]string)}
}

func (m *Memory) Load(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	tok, ok := m.tokens[m.key]
	return tok, ok, nil
}

func (m *Memory) Save(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[m.key] = token
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, m.key)
	return nil
}
