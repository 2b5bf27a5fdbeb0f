package vsa

import (
	"encoding/binary"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cespare/xxhash/v2"
)

// Bind composes a with b.
//
// b is rotated cyclically by an offset derived from a's support and then
// multiplied element-wise by a's signs (indices outside a's support keep
// their value). The result has the same sparsity as b and is dissimilar to
// both operands. Bind is not commutative.
func Bind(a, b *SparseVec) (*SparseVec, error) {
	if a.dim != b.dim {
		return nil, &ErrDimensionMismatch{Expected: a.dim, Actual: b.dim}
	}
	s := a.shift()
	rp := rotate(b.pos, s, a.dim)
	rn := rotate(b.neg, s, a.dim)
	pos, neg := flipSigns(rp, rn, a.neg)
	return &SparseVec{dim: a.dim, pos: pos, neg: neg}, nil
}

// Unbind inverts Bind: Unbind(Bind(a, b), a) equals b.
func Unbind(bound, a *SparseVec) (*SparseVec, error) {
	if a.dim != bound.dim {
		return nil, &ErrDimensionMismatch{Expected: a.dim, Actual: bound.dim}
	}
	pos, neg := flipSigns(bound.pos, bound.neg, a.neg)
	back := uint32(a.dim) - a.shift()
	return &SparseVec{
		dim: a.dim,
		pos: rotate(pos, back, a.dim),
		neg: rotate(neg, back, a.dim),
	}, nil
}

// Bundle superposes a and b: the element-wise sum clipped to {-1, 0, +1}.
// Opposite trits cancel. Bundle is commutative; folding many vectors is
// order sensitive only where cancellations happen.
func Bundle(a, b *SparseVec) (*SparseVec, error) {
	if a.dim != b.dim {
		return nil, &ErrDimensionMismatch{Expected: a.dim, Actual: b.dim}
	}
	p := roaring.Or(a.pos, b.pos)
	n := roaring.Or(a.neg, b.neg)
	return &SparseVec{
		dim: a.dim,
		pos: roaring.AndNot(p, n),
		neg: roaring.AndNot(n, p),
	}, nil
}

// shift derives the rotation offset used by Bind from v's support.
func (v *SparseVec) shift() uint32 {
	d := xxhash.New()
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v.dim))
	_, _ = d.Write(buf[:])
	writeSet(d, v.pos)
	_, _ = d.Write([]byte{'|'})
	writeSet(d, v.neg)
	return uint32(d.Sum64() % uint64(v.dim))
}

func writeSet(d *xxhash.Digest, bm *roaring.Bitmap) {
	var buf [4]byte
	it := bm.Iterator()
	for it.HasNext() {
		binary.LittleEndian.PutUint32(buf[:], it.Next())
		_, _ = d.Write(buf[:])
	}
}

func rotate(bm *roaring.Bitmap, s uint32, dim int) *roaring.Bitmap {
	if s == 0 || uint32(dim) == s {
		return bm.Clone()
	}
	out := make([]uint32, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, uint32((uint64(it.Next())+uint64(s))%uint64(dim)))
	}
	return roaring.BitmapOf(out...)
}

// flipSigns multiplies (pos, neg) by -1 on the indices in mask.
func flipSigns(pos, neg, mask *roaring.Bitmap) (*roaring.Bitmap, *roaring.Bitmap) {
	if mask.IsEmpty() {
		return pos.Clone(), neg.Clone()
	}
	toNeg := roaring.And(pos, mask)
	toPos := roaring.And(neg, mask)
	newPos := roaring.Or(roaring.AndNot(pos, mask), toPos)
	newNeg := roaring.Or(roaring.AndNot(neg, mask), toNeg)
	return newPos, newNeg
}
