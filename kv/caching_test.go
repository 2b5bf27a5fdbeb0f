package kv_test

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/patternmon/kv"
	"github.com/hupe1980/patternmon/testutil"
)

func TestCachingStore(t *testing.T) {
	testutil.RunBucketContract(t, kv.NewCachingStore(kv.NewMemoryStore("vectors"), 1<<20), "vectors")
}

func TestCachingStore_ServesRepeatedReads(t *testing.T) {
	ctx := context.Background()
	s := kv.NewCachingStore(kv.NewMemoryStore("v"), 1<<10)
	b, err := s.Open(ctx, "v")
	require.NoError(t, err)
	require.NoError(t, b.Set(ctx, "k", []byte("abc")))

	for i := 0; i < 3; i++ {
		got, err := b.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), got)
		got[0] = 'x'
	}
	assert.Equal(t, int64(1), s.Misses())
	assert.Equal(t, int64(2), s.Hits())
	assert.Equal(t, int64(3), s.Size())

	require.NoError(t, b.Set(ctx, "k", []byte("de")))
	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("de"), got)
	assert.Equal(t, int64(2), s.Misses())
}

func TestCachingStore_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	s := kv.NewCachingStore(kv.NewMemoryStore("v"), 8)
	b, err := s.Open(ctx, "v")
	require.NoError(t, err)

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, b.Set(ctx, k, bytes.Repeat([]byte(k), 4)))
	}
	for _, k := range []string{"a", "b", "a", "c"} {
		_, err := b.Get(ctx, k)
		require.NoError(t, err)
	}
	// a and c fit; b was evicted when c arrived.
	assert.Equal(t, int64(8), s.Size())
	misses := s.Misses()
	_, err = b.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, misses, s.Misses())
	_, err = b.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, misses+1, s.Misses())

	// Values larger than the cache are never kept.
	require.NoError(t, b.Set(ctx, "big", make([]byte, 9)))
	_, err = b.Get(ctx, "big")
	require.NoError(t, err)
	_, err = b.Get(ctx, "big")
	require.NoError(t, err)
	assert.Equal(t, misses+3, s.Misses())
}

func TestCachingStore_MissesAreNotCached(t *testing.T) {
	ctx := context.Background()
	s := kv.NewCachingStore(kv.NewMemoryStore("v"), 1<<10)
	b, err := s.Open(ctx, "v")
	require.NoError(t, err)

	_, err = b.Get(ctx, "nope")
	assert.ErrorIs(t, err, kv.ErrNotFound)
	require.NoError(t, b.Set(ctx, "nope", []byte{1}))
	got, err := b.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, got)

	_, err = s.Open(ctx, "missing")
	assert.ErrorIs(t, err, kv.ErrNoSuchStore)
}

// pausingStore holds the next Get after it has read from the inner bucket
// until release is closed.
type pausingStore struct {
	kv.Store
	armed   atomic.Bool
	fetched chan struct{}
	release chan struct{}
}

func (s *pausingStore) Open(ctx context.Context, name string) (kv.Bucket, error) {
	b, err := s.Store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &pausingBucket{Bucket: b, store: s}, nil
}

type pausingBucket struct {
	kv.Bucket
	store *pausingStore
}

func (b *pausingBucket) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := b.Bucket.Get(ctx, key)
	if b.store.armed.CompareAndSwap(true, false) {
		close(b.store.fetched)
		<-b.store.release
	}
	return v, err
}

func TestCachingStore_ReadRacingWriteIsNotCached(t *testing.T) {
	ctx := context.Background()
	inner := &pausingStore{
		Store:   kv.NewMemoryStore("v"),
		fetched: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := kv.NewCachingStore(inner, 1<<10)
	b, err := s.Open(ctx, "v")
	require.NoError(t, err)
	require.NoError(t, b.Set(ctx, "k", []byte("old")))

	inner.armed.Store(true)
	read := make(chan []byte, 1)
	go func() {
		v, _ := b.Get(ctx, "k")
		read <- v
	}()

	<-inner.fetched
	require.NoError(t, b.Set(ctx, "k", []byte("new")))
	close(inner.release)
	assert.Equal(t, []byte("old"), <-read)

	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
	assert.Equal(t, int64(len("new")), s.Size())
}
