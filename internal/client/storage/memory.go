package storage

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = append([]byte{}, value...)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Update applies fn to a copy and swaps it in only on success.
func (m *MemoryStore) Update(ctx context.Context, fn func(ctx context.Context, kv KV) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	draft := &MemoryStore{data: maps.Clone(m.data)}
	if draft.data == nil {
		draft.data = make(map[string][]byte)
	}
	if err := fn(ctx, draft); err != nil {
		return err
	}
	m.data = draft.data
	return nil
}
