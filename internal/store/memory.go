package store

import (
	"context"
	"sync"
)

// MemoryStore is a concurrency-safe in-memory Storage. It backs tests and
// serves as the degraded store when the database cannot be opened.
type MemoryStore struct {
	mu sync.RWMutex

	data map[string]string

	// maxEntries caps the number of keys; 0 means unlimited.
	maxEntries int
}

// NewMemoryStore creates a MemoryStore. If maxEntries is <= 0 the store is
// unbounded.
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]string),
		maxEntries: maxEntries,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value under key. A new key beyond the cap is rejected with
// ErrUnavailable, the in-memory analogue of a full quota.
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; !exists && s.maxEntries > 0 && len(s.data) >= s.maxEntries {
		return ErrUnavailable
	}
	s.data[key] = value
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

// Keys returns the number of stored keys.
func (s *MemoryStore) Keys() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
