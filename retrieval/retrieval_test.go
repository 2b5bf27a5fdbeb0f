package retrieval

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/patternmon/vsa"
)

func buildIndex(t *testing.T, n int) (*TernaryInvertedIndex, map[int]*vsa.SparseVec) {
	t.Helper()
	cfg := vsa.DefaultConfig()
	idx := NewTernaryInvertedIndex(cfg.Dimension)
	vectors := make(map[int]*vsa.SparseVec, n)
	for i := 0; i < n; i++ {
		v, err := vsa.EncodeData([]byte(fmt.Sprintf("field-%d", i)), cfg, 0)
		require.NoError(t, err)
		require.NoError(t, idx.Add(uint32(i), v))
		vectors[i] = v
	}
	idx.Finalize()
	return idx, vectors
}

func TestIndex_AddAndFinalize(t *testing.T) {
	idx, _ := buildIndex(t, 3)
	assert.Equal(t, 3, idx.Len())
	assert.True(t, idx.Finalized())
	assert.Equal(t, vsa.DefaultConfig().Dimension, idx.Dimension())

	v, err := vsa.EncodeData([]byte("late"), vsa.DefaultConfig(), 0)
	require.NoError(t, err)
	assert.ErrorIs(t, idx.Add(9, v), ErrFinalized)

	// Finalize is idempotent.
	idx.Finalize()
	assert.True(t, idx.Finalized())
}

func TestIndex_AddErrors(t *testing.T) {
	idx := NewTernaryInvertedIndex(16)

	var dm *ErrDimensionMismatch
	assert.ErrorAs(t, idx.Add(0, vsa.Zero(8)), &dm)

	v, err := vsa.New(16, []uint32{1}, []uint32{2})
	require.NoError(t, err)
	require.NoError(t, idx.Add(0, v))

	var dup *ErrDuplicateID
	require.ErrorAs(t, idx.Add(0, v), &dup)
	assert.Equal(t, uint32(0), dup.ID)
}

func TestTwoStageSearch_FindsQueryFirst(t *testing.T) {
	idx, vectors := buildIndex(t, 10)

	results, err := TwoStageSearch(vectors[0], idx, vectors, DefaultSearchConfig(), 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.LessOrEqual(t, len(results), 5)

	assert.Equal(t, 0, results[0].ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Equal(t, vectors[0].NNZ(), results[0].Overlap)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestTwoStageSearch_RanksBundledNeighbours(t *testing.T) {
	cfg := vsa.DefaultConfig()
	a, err := vsa.EncodeData([]byte("a"), cfg, 0)
	require.NoError(t, err)
	b, err := vsa.EncodeData([]byte("b"), cfg, 0)
	require.NoError(t, err)
	c, err := vsa.EncodeData([]byte("c"), cfg, 0)
	require.NoError(t, err)
	ab, err := vsa.Bundle(a, b)
	require.NoError(t, err)

	vectors := map[int]*vsa.SparseVec{0: a, 1: ab, 2: c}
	idx := NewTernaryInvertedIndex(cfg.Dimension)
	for id, v := range vectors {
		require.NoError(t, idx.Add(uint32(id), v))
	}
	idx.Finalize()

	results, err := TwoStageSearch(a, idx, vectors, DefaultSearchConfig(), 5)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(results), 2)
	assert.Equal(t, 0, results[0].ID)
	assert.Equal(t, 1, results[1].ID)
}

func TestTwoStageSearch_RespectsK(t *testing.T) {
	cfg := vsa.DefaultConfig()
	base, err := vsa.EncodeData([]byte("base"), cfg, 0)
	require.NoError(t, err)

	// Every vector shares the base support, so all of them overlap the query.
	idx := NewTernaryInvertedIndex(cfg.Dimension)
	vectors := make(map[int]*vsa.SparseVec)
	for i := 0; i < 12; i++ {
		extra, err := vsa.EncodeData([]byte(fmt.Sprintf("extra-%d", i)), cfg, 0)
		require.NoError(t, err)
		v, err := vsa.Bundle(base, extra)
		require.NoError(t, err)
		vectors[i] = v
		require.NoError(t, idx.Add(uint32(i), v))
	}
	idx.Finalize()

	results, err := TwoStageSearch(base, idx, vectors, DefaultSearchConfig(), 5)
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

func TestTwoStageSearch_Errors(t *testing.T) {
	idx := NewTernaryInvertedIndex(16)
	q := vsa.Zero(16)

	_, err := TwoStageSearch(q, idx, nil, DefaultSearchConfig(), 5)
	assert.ErrorIs(t, err, ErrNotFinalized)

	idx.Finalize()
	_, err = TwoStageSearch(q, idx, nil, DefaultSearchConfig(), 0)
	assert.ErrorIs(t, err, ErrInvalidK)

	var dm *ErrDimensionMismatch
	_, err = TwoStageSearch(vsa.Zero(8), idx, nil, DefaultSearchConfig(), 5)
	assert.ErrorAs(t, err, &dm)
}

func TestTwoStageSearch_EmptyIndex(t *testing.T) {
	idx := NewTernaryInvertedIndex(16)
	idx.Finalize()

	q, err := vsa.New(16, []uint32{1}, nil)
	require.NoError(t, err)
	results, err := TwoStageSearch(q, idx, map[int]*vsa.SparseVec{}, DefaultSearchConfig(), 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestTopHeap(t *testing.T) {
	h := newTopHeap(3)
	for i, s := range []float64{0.1, 0.9, 0.5, 0.7, 0.2, 0.9} {
		h.Offer(candidate{id: uint32(i), score: s})
	}
	got := h.Sorted()
	require.Len(t, got, 3)
	assert.Equal(t, []uint32{1, 5, 3}, []uint32{got[0].id, got[1].id, got[2].id})
	assert.Equal(t, 0, h.Len())
}

func TestSearchConfig_Shortlist(t *testing.T) {
	assert.Equal(t, 20, DefaultSearchConfig().shortlist(5))
	assert.Equal(t, 16, DefaultSearchConfig().shortlist(2))
	assert.Equal(t, 7, SearchConfig{}.shortlist(7))
}
