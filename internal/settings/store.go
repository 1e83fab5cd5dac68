// Package settings holds the persisted user preferences the provider calls
// read from: preferred provider, per-provider credentials and the custom API.
package settings

import (
	"context"
	"sync"
)

// Store is a flat key-value settings store
type Store interface {
	// Get returns the value for key; ok is false when the key was never set
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key
	Set(ctx context.Context, key, value string) error
}

// MemoryStore is an in-process Store
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates a store seeded with values
func NewMemoryStore(values map[string]string) *MemoryStore {
	s := &MemoryStore{values: make(map[string]string, len(values))}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
