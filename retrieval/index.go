package retrieval

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/patternmon/vsa"
)

// TernaryInvertedIndex maps every dimension to the ids holding a non-zero
// trit there.
//
// The index is built with Add and becomes read-only after Finalize. It is not
// safe for concurrent mutation; a finalized index may be searched
// concurrently.
type TernaryInvertedIndex struct {
	dim       int
	pos       map[uint32]*roaring.Bitmap
	neg       map[uint32]*roaring.Bitmap
	ids       *roaring.Bitmap
	finalized bool
}

// NewTernaryInvertedIndex creates an empty index for vectors of the given dimension.
func NewTernaryInvertedIndex(dim int) *TernaryInvertedIndex {
	return &TernaryInvertedIndex{
		dim: dim,
		pos: make(map[uint32]*roaring.Bitmap),
		neg: make(map[uint32]*roaring.Bitmap),
		ids: roaring.New(),
	}
}

// Add registers v under id.
func (x *TernaryInvertedIndex) Add(id uint32, v *vsa.SparseVec) error {
	if x.finalized {
		return ErrFinalized
	}
	if v.Dimension() != x.dim {
		return &ErrDimensionMismatch{Expected: x.dim, Actual: v.Dimension()}
	}
	if !x.ids.CheckedAdd(id) {
		return &ErrDuplicateID{ID: id}
	}

	for i, trit := range v.NonZero() {
		postings := x.pos
		if trit < 0 {
			postings = x.neg
		}
		bm, ok := postings[i]
		if !ok {
			bm = roaring.New()
			postings[i] = bm
		}
		bm.Add(id)
	}
	return nil
}

// Finalize compacts the posting lists and freezes the index.
// Calling Finalize more than once is a no-op.
func (x *TernaryInvertedIndex) Finalize() {
	if x.finalized {
		return
	}
	for _, bm := range x.pos {
		bm.RunOptimize()
	}
	for _, bm := range x.neg {
		bm.RunOptimize()
	}
	x.finalized = true
}

// Finalized reports whether Finalize has been called.
func (x *TernaryInvertedIndex) Finalized() bool { return x.finalized }

// Len returns the number of indexed vectors.
func (x *TernaryInvertedIndex) Len() int { return int(x.ids.GetCardinality()) }

// Dimension returns the vector dimension accepted by the index.
func (x *TernaryInvertedIndex) Dimension() int { return x.dim }

// coarseScores accumulates the ternary dot product between query and every
// indexed vector sharing at least one non-zero dimension with it.
func (x *TernaryInvertedIndex) coarseScores(query *vsa.SparseVec) map[uint32]int32 {
	scores := make(map[uint32]int32)
	for i, trit := range query.NonZero() {
		same, opposite := x.pos[i], x.neg[i]
		if trit < 0 {
			same, opposite = opposite, same
		}
		if same != nil {
			it := same.Iterator()
			for it.HasNext() {
				scores[it.Next()]++
			}
		}
		if opposite != nil {
			it := opposite.Iterator()
			for it.HasNext() {
				scores[it.Next()]--
			}
		}
	}
	return scores
}
