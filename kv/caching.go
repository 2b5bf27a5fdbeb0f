package kv

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

// CachingStore wraps a Store and caches Get results in a byte-bounded LRU.
// Set and Delete go through to the inner store and invalidate the cached
// entry. A read that raced with a write to the same key is returned but
// not cached.
type CachingStore struct {
	inner Store

	mu        sync.Mutex
	capacity  int64
	size      int64
	items     map[cacheKey]*list.Element
	evictList *list.List
	// fills tracks keys with a Get in flight against the inner store.
	fills map[cacheKey]*fill

	hits   atomic.Int64
	misses atomic.Int64
}

type cacheKey struct {
	bucket string
	key    string
}

type fill struct {
	pending int
	gen     uint64
}

type cacheEntry struct {
	key   cacheKey
	value []byte
}

// NewCachingStore caches up to capacity bytes of values read from inner.
func NewCachingStore(inner Store, capacity int64) *CachingStore {
	return &CachingStore{
		inner:     inner,
		capacity:  capacity,
		items:     make(map[cacheKey]*list.Element),
		evictList: list.New(),
		fills:     make(map[cacheKey]*fill),
	}
}

// Open implements Store.
func (s *CachingStore) Open(ctx context.Context, name string) (Bucket, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &cachingBucket{Bucket: b, store: s, name: name}, nil
}

// Hits returns the number of Get calls served from the cache.
func (s *CachingStore) Hits() int64 { return s.hits.Load() }

// Misses returns the number of Get calls that reached the inner store.
func (s *CachingStore) Misses() int64 { return s.misses.Load() }

// Size returns the cached bytes.
func (s *CachingStore) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// get returns the cached value. On a miss it registers a fill and returns
// the generation put must present.
func (s *CachingStore) get(k cacheKey) ([]byte, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.items[k]; ok {
		s.hits.Add(1)
		s.evictList.MoveToFront(ent)
		return ent.Value.(*cacheEntry).value, 0, true
	}
	s.misses.Add(1)
	f, ok := s.fills[k]
	if !ok {
		f = &fill{}
		s.fills[k] = f
	}
	f.pending++
	return nil, f.gen, false
}

// put completes a fill started by get. The value is cached only if no
// write invalidated k since then. A nil value just releases the fill.
func (s *CachingStore) put(k cacheKey, gen uint64, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.fills[k]
	stale := f.gen != gen
	if f.pending--; f.pending == 0 {
		delete(s.fills, k)
	}
	n := int64(len(value))
	if stale || value == nil || n > s.capacity {
		return
	}

	if ent, ok := s.items[k]; ok {
		s.evictList.MoveToFront(ent)
		e := ent.Value.(*cacheEntry)
		s.size += n - int64(len(e.value))
		e.value = value
	} else {
		s.items[k] = s.evictList.PushFront(&cacheEntry{key: k, value: value})
		s.size += n
	}

	for s.size > s.capacity {
		back := s.evictList.Back()
		if back == nil {
			break
		}
		s.removeElement(back)
	}
}

func (s *CachingStore) invalidate(k cacheKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.items[k]; ok {
		s.removeElement(ent)
	}
	if f, ok := s.fills[k]; ok {
		f.gen++
	}
}

func (s *CachingStore) removeElement(ent *list.Element) {
	s.evictList.Remove(ent)
	e := ent.Value.(*cacheEntry)
	delete(s.items, e.key)
	s.size -= int64(len(e.value))
}

type cachingBucket struct {
	Bucket
	store *CachingStore
	name  string
}

func (b *cachingBucket) Get(ctx context.Context, key string) ([]byte, error) {
	k := cacheKey{bucket: b.name, key: key}
	v, gen, ok := b.store.get(k)
	if ok {
		return append([]byte(nil), v...), nil
	}
	v, err := b.Bucket.Get(ctx, key)
	if err != nil {
		b.store.put(k, gen, nil)
		return nil, err
	}
	b.store.put(k, gen, append([]byte{}, v...))
	return v, nil
}

// Set invalidates after the write so a fill that read the previous value
// while the write was in progress is dropped.
func (b *cachingBucket) Set(ctx context.Context, key string, value []byte) error {
	k := cacheKey{bucket: b.name, key: key}
	b.store.invalidate(k)
	err := b.Bucket.Set(ctx, key, value)
	b.store.invalidate(k)
	return err
}

func (b *cachingBucket) Delete(ctx context.Context, key string) error {
	k := cacheKey{bucket: b.name, key: key}
	b.store.invalidate(k)
	err := b.Bucket.Delete(ctx, key)
	b.store.invalidate(k)
	return err
}
