package kv

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// DefaultCapacity matches the per-origin quota of browser local storage.
const DefaultCapacity = 5 * 1024 * 1024

var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-process Store bounded by a total byte capacity.
// Usage counts the length of every key and value.
type MemoryStore struct {
	mu       sync.RWMutex
	capacity int
	used     int
	data     map[string]string
	notifier *Notifier
}

// NewMemoryStore creates a MemoryStore. A capacity <= 0 disables the quota.
func NewMemoryStore(capacity int) *MemoryStore {
	return &MemoryStore{
		capacity: capacity,
		data:     make(map[string]string),
		notifier: NewNotifier(),
	}
}

func (s *MemoryStore) Put(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("kv: key cannot be empty")
	}

	s.mu.Lock()
	used := s.used + len(key) + len(value)
	if old, ok := s.data[key]; ok {
		used -= len(key) + len(old)
	}
	if s.capacity > 0 && used > s.capacity {
		s.mu.Unlock()
		return fmt.Errorf("failed to write %q (%d of %d bytes): %w", key, used, s.capacity, ErrQuotaExceeded)
	}
	s.data[key] = value
	s.used = used
	s.mu.Unlock()

	s.notifier.Publish(Change{Key: key, Value: value})
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.data[key]; ok {
		s.used -= len(key) + len(old)
		delete(s.data, key)
	}
	return nil
}

// Keys returns all keys in lexical order.
func (s *MemoryStore) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemoryStore) Subscribe(key string, fn func(Change)) func() {
	return s.notifier.Subscribe(key, fn)
}

// Used returns the number of bytes currently stored.
func (s *MemoryStore) Used() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.used
}
