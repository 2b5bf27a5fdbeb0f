package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/patternmon/kv"
	"github.com/hupe1980/patternmon/testutil"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_Contract(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.CreateBucket(context.Background(), "pattern-monitor-vectors"))
	testutil.RunBucketContract(t, s, "pattern-monitor-vectors")
}

func TestStore_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.CreateBucket(ctx, "v"))
	b, err := s.Open(ctx, "v")
	require.NoError(t, err)
	require.NoError(t, b.Set(ctx, "k", []byte("v")))

	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestStore_InvalidBucketName(t *testing.T) {
	s := newStore(t)
	for _, name := range []string{"", `x"; DROP TABLE y; --`, "a b"} {
		_, err := s.Open(context.Background(), name)
		var oe *kv.OtherError
		assert.ErrorAs(t, err, &oe, name)
	}
}

func TestStore_ListKeysTreatsWildcardsLiterally(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateBucket(ctx, "v"))
	b, err := s.Open(ctx, "v")
	require.NoError(t, err)

	require.NoError(t, b.Set(ctx, "semantic:v1:a%", nil))
	require.NoError(t, b.Set(ctx, "semantic:v1:ab", nil))

	keys, err := b.ListKeys(ctx, "semantic:v1:a%")
	require.NoError(t, err)
	assert.Equal(t, []string{"semantic:v1:a%"}, keys)

	got, err := b.Get(ctx, "semantic:v1:ab")
	require.NoError(t, err)
	assert.Empty(t, got)
}
