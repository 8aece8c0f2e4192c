package storage

import (
	"context"
	"sort"
	"sync"
)

// Memory keeps client state in process memory only.
type Memory struct {
	mu     sync.RWMutex
	values map[string]map[string]string
}

// NewMemory returns an empty in-process backend.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]map[string]string)}
}

// Close is a no-op; the state goes with the process.
func (m *Memory) Close() error {
	return nil
}

// Get returns the stored value of key for client.
func (m *Memory) Get(_ context.Context, client, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[client][key]
	return v, ok, nil
}

// Set writes key for client.
func (m *Memory) Set(_ context.Context, client, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values[client] == nil {
		m.values[client] = make(map[string]string)
	}
	m.values[client][key] = value
	return nil
}

// Keys lists the keys stored for client, sorted.
func (m *Memory) Keys(_ context.Context, client string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.values[client]))
	for k := range m.values[client] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
