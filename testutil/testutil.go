package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/patternmon/kv"
)

// RunBucketContract exercises the kv.Bucket behaviour every backend must
// provide. bucket must exist in store and be empty.
func RunBucketContract(t *testing.T, store kv.Store, bucket string) {
	t.Helper()
	ctx := context.Background()

	b, err := store.Open(ctx, bucket)
	require.NoError(t, err)

	_, err = b.Get(ctx, "semantic:v1:missing")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	ok, err := b.Exists(ctx, "semantic:v1:missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Set(ctx, "semantic:v1:event", []byte{1, 2, 3}))
	require.NoError(t, b.Set(ctx, "semantic:v1:a/b", []byte("slash")))
	require.NoError(t, b.Set(ctx, "bundle:v1:quakes", []byte("bundle")))

	got, err := b.Get(ctx, "semantic:v1:event")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	// Overwrite is unconditional.
	require.NoError(t, b.Set(ctx, "semantic:v1:event", []byte{9}))
	got, err = b.Get(ctx, "semantic:v1:event")
	require.NoError(t, err)
	assert.Equal(t, []byte{9}, got)

	ok, err = b.Exists(ctx, "bundle:v1:quakes")
	require.NoError(t, err)
	assert.True(t, ok)

	keys, err := b.ListKeys(ctx, "semantic:v1:")
	require.NoError(t, err)
	assert.Equal(t, []string{"semantic:v1:a/b", "semantic:v1:event"}, keys)

	all, err := b.ListKeys(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, b.Delete(ctx, "semantic:v1:event"))
	require.NoError(t, b.Delete(ctx, "semantic:v1:event"))
	_, err = b.Get(ctx, "semantic:v1:event")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	_, err = store.Open(ctx, bucket+"-does-not-exist")
	assert.ErrorIs(t, err, kv.ErrNoSuchStore)
}

// SetCall is one recorded Bucket.Set.
type SetCall struct {
	Bucket string
	Key    string
	Value  []byte
}

// RecordingStore wraps a kv.Store and records opens and writes. It can be
// told to fail a specific Set call.
type RecordingStore struct {
	inner kv.Store

	mu        sync.Mutex
	opens     []string
	sets      []SetCall
	failAt    int
	failErr   error
	openErr   error
	setCalled int
}

// NewRecordingStore wraps inner.
func NewRecordingStore(inner kv.Store) *RecordingStore {
	return &RecordingStore{inner: inner}
}

// FailSetAt makes the n-th Set call (1-based) return err without writing.
func (s *RecordingStore) FailSetAt(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAt, s.failErr = n, err
}

// FailOpen makes every Open return err.
func (s *RecordingStore) FailOpen(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openErr = err
}

// Opens returns the names passed to Open.
func (s *RecordingStore) Opens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.opens...)
}

// Sets returns the successful Set calls in order.
func (s *RecordingStore) Sets() []SetCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SetCall(nil), s.sets...)
}

// SetKeys returns the keys of the successful Set calls in order.
func (s *RecordingStore) SetKeys() []string {
	var keys []string
	for _, c := range s.Sets() {
		keys = append(keys, c.Key)
	}
	return keys
}

// Open implements kv.Store.
func (s *RecordingStore) Open(ctx context.Context, name string) (kv.Bucket, error) {
	s.mu.Lock()
	s.opens = append(s.opens, name)
	openErr := s.openErr
	s.mu.Unlock()

	if openErr != nil {
		return nil, openErr
	}
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &recordingBucket{Bucket: b, store: s, name: name}, nil
}

type recordingBucket struct {
	kv.Bucket
	store *RecordingStore
	name  string
}

func (b *recordingBucket) Set(ctx context.Context, key string, value []byte) error {
	s := b.store
	s.mu.Lock()
	s.setCalled++
	if s.failAt > 0 && s.setCalled == s.failAt {
		err := s.failErr
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	if err := b.Bucket.Set(ctx, key, value); err != nil {
		return err
	}

	s.mu.Lock()
	s.sets = append(s.sets, SetCall{Bucket: b.name, Key: key, Value: append([]byte(nil), value...)})
	s.mu.Unlock()
	return nil
}
