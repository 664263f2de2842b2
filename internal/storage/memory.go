package storage

import (
	"context"
	"sync"
)

// MemoryKV is an in-process driver for tests and no-infra runs.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string

	// GetErr and SetErr, when set, are returned by the respective
	// operations. Tests use them to exercise the fallback paths.
	GetErr error
	SetErr error
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	val, ok := m.data[key]
	return val, ok, nil
}

func (m *MemoryKV) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SetErr != nil {
		return m.SetErr
	}
	m.data[key] = value
	return nil
}

func (m *MemoryKV) Close() error {
	return nil
}
