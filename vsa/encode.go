package vsa

import (
	"encoding/binary"
	"math/bits"
	"math/rand/v2"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cespare/xxhash/v2"
)

// EncodeData maps data to a sparse ternary vector.
//
// The result depends only on data, cfg and seed: identical inputs always
// produce identical vectors. The indices are drawn from a PCG generator
// seeded by two xxhash digests of (config, seed, data).
func EncodeData(data []byte, cfg Config, seed uint64) (*SparseVec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	src := rand.NewPCG(encodingSeeds(data, cfg, seed))

	dim := uint64(cfg.Dimension)
	picked := roaring.New()
	indices := make([]uint32, 0, cfg.NonZero)
	for len(indices) < cfg.NonZero {
		// Multiply-shift range reduction; keeps the draw independent of
		// the math/rand convenience methods.
		hi, _ := bits.Mul64(src.Uint64(), dim)
		idx := uint32(hi)
		if picked.CheckedAdd(idx) {
			indices = append(indices, idx)
		}
	}

	half := cfg.NonZero / 2
	return &SparseVec{
		dim: cfg.Dimension,
		pos: roaring.BitmapOf(indices[:half]...),
		neg: roaring.BitmapOf(indices[half:]...),
	}, nil
}

func encodingSeeds(data []byte, cfg Config, seed uint64) (uint64, uint64) {
	var hdr [1 + 8 + 8 + 8]byte
	hdr[0] = cfg.Version
	binary.LittleEndian.PutUint64(hdr[1:], uint64(cfg.Dimension))
	binary.LittleEndian.PutUint64(hdr[9:], uint64(cfg.NonZero))
	binary.LittleEndian.PutUint64(hdr[17:], seed)

	d := xxhash.New()
	_, _ = d.Write(hdr[:])
	_, _ = d.Write(data)
	s1 := d.Sum64()

	// Sum64 does not reset the digest; extend it for the second stream word.
	_, _ = d.Write([]byte{0xff})
	s2 := d.Sum64()

	return s1, s2
}
