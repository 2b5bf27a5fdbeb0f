package vsa

import (
	"errors"
	"fmt"
)

// ErrCorrupt is returned when a serialized vector cannot be decoded.
var ErrCorrupt = errors.New("vsa: corrupt vector encoding")

// ErrDimensionMismatch indicates that two operands have different dimensions.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("vsa: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrInvalidConfig indicates an unusable Config.
type ErrInvalidConfig struct {
	Reason string
}

func (e *ErrInvalidConfig) Error() string {
	return "vsa: invalid config: " + e.Reason
}
