// Package vsa implements the sparse ternary hypervector algebra used to
// encode messages.
//
// A SparseVec has a fixed dimension and holds a small number of non-zero
// trits (+1 or -1). The positive and negative supports are stored as Roaring
// bitmaps, which keeps vectors compact and makes the similarity kernels plain
// set intersections.
//
// # Operations
//
//   - EncodeData maps arbitrary bytes to a vector. It is a pure function of
//     the bytes, the Config and the seed.
//   - Bind composes two vectors. It is reversible given the first operand:
//     Unbind(Bind(a, b), a) equals b.
//   - Bundle superposes two vectors (element-wise sum clipped to a trit).
//   - Dot and Cosine measure similarity.
//
// # Example
//
//	cfg := vsa.DefaultConfig()
//	key, _ := vsa.EncodeData([]byte("event"), cfg, 0)
//	val, _ := vsa.EncodeData([]byte(`"quake"`), cfg, 0)
//	field, _ := vsa.Bind(key, val)
//	data, _ := field.MarshalBinary()
package vsa
