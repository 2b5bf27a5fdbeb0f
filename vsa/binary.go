package vsa

import (
	"encoding/binary"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// binaryFormatVersion is the first byte of every serialized vector.
const binaryFormatVersion = 1

// Serialized layout (little-endian):
//
//	[version uint8][dimension uint32]
//	[len(pos) uint32][pos roaring bytes]
//	[len(neg) uint32][neg roaring bytes]
//
// The roaring sections are always written from freshly built bitmaps so the
// container layout only depends on the set contents. That keeps
// decode-then-encode byte identical.

// MarshalBinary implements encoding.BinaryMarshaler.
func (v *SparseVec) MarshalBinary() ([]byte, error) {
	pos, err := canonicalBytes(v.pos)
	if err != nil {
		return nil, err
	}
	neg, err := canonicalBytes(v.neg)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, 1+4+4+len(pos)+4+len(neg))
	buf = append(buf, binaryFormatVersion)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(v.dim))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(pos)))
	buf = append(buf, pos...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(neg)))
	buf = append(buf, neg...)
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (v *SparseVec) UnmarshalBinary(data []byte) error {
	if len(data) < 1+4+4 {
		return fmt.Errorf("%w: short buffer (%d bytes)", ErrCorrupt, len(data))
	}
	if data[0] != binaryFormatVersion {
		return fmt.Errorf("%w: unsupported format version %d", ErrCorrupt, data[0])
	}
	dim := int(binary.LittleEndian.Uint32(data[1:]))
	if dim <= 0 {
		return fmt.Errorf("%w: invalid dimension %d", ErrCorrupt, dim)
	}
	rest := data[5:]

	pos, rest, err := readSection(rest)
	if err != nil {
		return err
	}
	neg, rest, err := readSection(rest)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(rest))
	}

	out := SparseVec{dim: dim, pos: pos, neg: neg}
	if err := out.validate(); err != nil {
		return err
	}
	*v = out
	return nil
}

func canonicalBytes(bm *roaring.Bitmap) ([]byte, error) {
	return roaring.BitmapOf(bm.ToArray()...).ToBytes()
}

func readSection(data []byte) (*roaring.Bitmap, []byte, error) {
	if len(data) < 4 {
		return nil, nil, fmt.Errorf("%w: missing section length", ErrCorrupt)
	}
	n := int(binary.LittleEndian.Uint32(data))
	data = data[4:]
	if n > len(data) {
		return nil, nil, fmt.Errorf("%w: section length %d exceeds buffer", ErrCorrupt, n)
	}
	bm := roaring.New()
	if err := bm.UnmarshalBinary(data[:n]); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return bm, data[n:], nil
}
