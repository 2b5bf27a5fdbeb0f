package retrieval

import (
	"errors"
	"fmt"
)

var (
	// ErrFinalized is returned when adding to a finalized index.
	ErrFinalized = errors.New("retrieval: index is finalized")

	// ErrNotFinalized is returned when searching an index that is still being built.
	ErrNotFinalized = errors.New("retrieval: index is not finalized")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("retrieval: k must be positive")
)

// ErrDuplicateID indicates that an id was added twice.
type ErrDuplicateID struct {
	ID uint32
}

func (e *ErrDuplicateID) Error() string {
	return fmt.Sprintf("retrieval: duplicate id %d", e.ID)
}

// ErrDimensionMismatch indicates a vector whose dimension differs from the index.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("retrieval: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}
