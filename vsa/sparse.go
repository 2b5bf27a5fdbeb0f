package vsa

import (
	"fmt"
	"iter"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// SparseVec is an immutable sparse ternary hypervector.
//
// The positive and negative supports are disjoint. Methods never mutate the
// receiver, so a SparseVec may be shared between goroutines.
type SparseVec struct {
	dim int
	pos *roaring.Bitmap
	neg *roaring.Bitmap
}

// Zero returns the all-zero vector of the given dimension.
func Zero(dim int) *SparseVec {
	return &SparseVec{
		dim: dim,
		pos: roaring.New(),
		neg: roaring.New(),
	}
}

// New builds a vector from explicit positive and negative index sets.
// Indices must be in [0, dim) and the two sets must not overlap.
func New(dim int, positive, negative []uint32) (*SparseVec, error) {
	if dim <= 0 {
		return nil, &ErrInvalidConfig{Reason: fmt.Sprintf("dimension must be positive, got %d", dim)}
	}
	v := &SparseVec{
		dim: dim,
		pos: roaring.BitmapOf(positive...),
		neg: roaring.BitmapOf(negative...),
	}
	if err := v.validate(); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *SparseVec) validate() error {
	if v.pos.Intersects(v.neg) {
		return fmt.Errorf("%w: positive and negative supports overlap", ErrCorrupt)
	}
	if !v.pos.IsEmpty() && int(v.pos.Maximum()) >= v.dim {
		return fmt.Errorf("%w: index %d out of range for dimension %d", ErrCorrupt, v.pos.Maximum(), v.dim)
	}
	if !v.neg.IsEmpty() && int(v.neg.Maximum()) >= v.dim {
		return fmt.Errorf("%w: index %d out of range for dimension %d", ErrCorrupt, v.neg.Maximum(), v.dim)
	}
	return nil
}

// Dimension returns the number of trits.
func (v *SparseVec) Dimension() int { return v.dim }

// NNZ returns the number of non-zero trits.
func (v *SparseVec) NNZ() int {
	return int(v.pos.GetCardinality() + v.neg.GetCardinality())
}

// IsZero reports whether every trit is zero.
func (v *SparseVec) IsZero() bool {
	return v.pos.IsEmpty() && v.neg.IsEmpty()
}

// Positive returns the sorted indices holding +1.
func (v *SparseVec) Positive() []uint32 { return v.pos.ToArray() }

// Negative returns the sorted indices holding -1.
func (v *SparseVec) Negative() []uint32 { return v.neg.ToArray() }

// At returns the trit at index i (-1, 0 or +1).
func (v *SparseVec) At(i uint32) int8 {
	switch {
	case v.pos.Contains(i):
		return 1
	case v.neg.Contains(i):
		return -1
	default:
		return 0
	}
}

// NonZero iterates the non-zero trits in ascending index order.
func (v *SparseVec) NonZero() iter.Seq2[uint32, int8] {
	return func(yield func(uint32, int8) bool) {
		pi, ni := v.pos.Iterator(), v.neg.Iterator()
		for pi.HasNext() || ni.HasNext() {
			switch {
			case !ni.HasNext() || (pi.HasNext() && pi.PeekNext() < ni.PeekNext()):
				if !yield(pi.Next(), 1) {
					return
				}
			default:
				if !yield(ni.Next(), -1) {
					return
				}
			}
		}
	}
}

// Equal reports whether both vectors hold the same trits.
func (v *SparseVec) Equal(o *SparseVec) bool {
	if v == nil || o == nil {
		return v == o
	}
	return v.dim == o.dim && v.pos.Equals(o.pos) && v.neg.Equals(o.neg)
}

// Dot returns the ternary dot product.
func Dot(a, b *SparseVec) (int, error) {
	if a.dim != b.dim {
		return 0, &ErrDimensionMismatch{Expected: a.dim, Actual: b.dim}
	}
	return dot(a, b), nil
}

func dot(a, b *SparseVec) int {
	same := a.pos.AndCardinality(b.pos) + a.neg.AndCardinality(b.neg)
	diff := a.pos.AndCardinality(b.neg) + a.neg.AndCardinality(b.pos)
	return int(same) - int(diff)
}

// Cosine returns the cosine similarity in [-1, 1].
// The similarity with a zero vector is 0.
func Cosine(a, b *SparseVec) (float64, error) {
	if a.dim != b.dim {
		return 0, &ErrDimensionMismatch{Expected: a.dim, Actual: b.dim}
	}
	return cosine(a, b), nil
}

func cosine(a, b *SparseVec) float64 {
	na, nb := a.NNZ(), b.NNZ()
	if na == 0 || nb == 0 {
		return 0
	}
	return float64(dot(a, b)) / math.Sqrt(float64(na)*float64(nb))
}

// String implements fmt.Stringer.
func (v *SparseVec) String() string {
	return fmt.Sprintf("SparseVec(dim=%d, +%d, -%d)", v.dim, v.pos.GetCardinality(), v.neg.GetCardinality())
}
