package storage

import (
	"context"
	"sync"
)

// Memory is a process-local key-value store. Contents are lost on restart.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]string),
	}
}

// Get returns the value stored under key
func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.entries[key]
	return value, ok, nil
}

// Set stores value under key, replacing any previous value
func (m *Memory) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = value
	return nil
}

// Delete removes key; deleting a missing key is not an error
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// Apply sets and deletes several keys under one lock
func (m *Memory) Apply(ctx context.Context, set map[string]string, del []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, value := range set {
		m.entries[key] = value
	}
	for _, key := range del {
		delete(m.entries, key)
	}
	return nil
}

// Ping always succeeds
func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (m *Memory) Close() error {
	return nil
}
