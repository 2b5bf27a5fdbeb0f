package encoder

import (
	"slices"

	"github.com/hupe1980/patternmon/vsa"
)

// BuildBundle superposes vectors into one bundle vector, folding in
// ascending id order so identical input always yields the same bundle.
// It reports false when vectors is empty.
func BuildBundle(vectors map[int]*vsa.SparseVec) (*vsa.SparseVec, bool, error) {
	if len(vectors) == 0 {
		return nil, false, nil
	}
	ids := make([]int, 0, len(vectors))
	for id := range vectors {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	acc := vectors[ids[0]]
	for _, id := range ids[1:] {
		next, err := vsa.Bundle(acc, vectors[id])
		if err != nil {
			return nil, false, err
		}
		acc = next
	}
	return acc, true, nil
}
