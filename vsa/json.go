package vsa

import (
	"fmt"

	json "github.com/goccy/go-json"
)

type jsonVec struct {
	Dimension int      `json:"dimension"`
	Positive  []uint32 `json:"positive"`
	Negative  []uint32 `json:"negative"`
}

// MarshalJSON implements json.Marshaler.
func (v *SparseVec) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonVec{
		Dimension: v.dim,
		Positive:  v.Positive(),
		Negative:  v.Negative(),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *SparseVec) UnmarshalJSON(data []byte) error {
	var j jsonVec
	if err := json.Unmarshal(data, &j); err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if j.Dimension <= 0 {
		return fmt.Errorf("%w: invalid dimension %d", ErrCorrupt, j.Dimension)
	}
	out, err := New(j.Dimension, j.Positive, j.Negative)
	if err != nil {
		return err
	}
	*v = *out
	return nil
}
