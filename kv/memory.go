package kv

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// MemoryStore is an in-memory Store for tests and dry runs.
// Buckets must be created with CreateBucket before they can be opened.
type MemoryStore struct {
	mu      sync.RWMutex
	buckets map[string]*memoryBucket
}

// NewMemoryStore creates a store holding the given (empty) buckets.
func NewMemoryStore(buckets ...string) *MemoryStore {
	s := &MemoryStore{buckets: make(map[string]*memoryBucket)}
	for _, name := range buckets {
		s.CreateBucket(name)
	}
	return s
}

// CreateBucket creates the named bucket if it does not exist yet.
func (s *MemoryStore) CreateBucket(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buckets[name]; !ok {
		s.buckets[name] = &memoryBucket{data: make(map[string][]byte)}
	}
}

// Open returns the named bucket.
func (s *MemoryStore) Open(ctx context.Context, name string) (Bucket, error) {
	if err := ctx.Err(); err != nil {
		return nil, Other("open", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.buckets[name]
	if !ok {
		return nil, ErrNoSuchStore
	}
	return b, nil
}

type memoryBucket struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func (b *memoryBucket) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	v, ok := b.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	// Copy to prevent external mutation
	return slices.Clone(v), nil
}

func (b *memoryBucket) Set(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.data[key] = slices.Clone(value)
	return nil
}

func (b *memoryBucket) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.data, key)
	return nil
}

func (b *memoryBucket) Exists(_ context.Context, key string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, ok := b.data[key]
	return ok, nil
}

func (b *memoryBucket) ListKeys(_ context.Context, prefix string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var keys []string
	for k := range b.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}
