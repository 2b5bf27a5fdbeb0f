package vsa

import (
	"fmt"
	"math"
)

// Config describes how data is mapped to hypervectors.
//
// Two vectors are only comparable when they were produced with the same
// Config. Version is mixed into every encoding seed, so bumping it changes
// every vector.
type Config struct {
	// Version of the encoding scheme.
	Version uint8
	// Dimension is the number of trits per vector.
	Dimension int
	// NonZero is the number of non-zero trits produced by EncodeData.
	// Half of them are +1, half are -1, so it must be even.
	NonZero int
}

// DefaultConfig returns the version 1 encoding: 10,000 dimensions with
// 100 non-zero trits.
func DefaultConfig() Config {
	return Config{
		Version:   1,
		Dimension: 10000,
		NonZero:   100,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch {
	case c.Dimension <= 0:
		return &ErrInvalidConfig{Reason: fmt.Sprintf("dimension must be positive, got %d", c.Dimension)}
	case int64(c.Dimension) > math.MaxUint32:
		return &ErrInvalidConfig{Reason: fmt.Sprintf("dimension %d exceeds the 32-bit index space", c.Dimension)}
	case c.NonZero <= 0:
		return &ErrInvalidConfig{Reason: fmt.Sprintf("non-zero count must be positive, got %d", c.NonZero)}
	case c.NonZero > c.Dimension:
		return &ErrInvalidConfig{Reason: fmt.Sprintf("non-zero count %d exceeds dimension %d", c.NonZero, c.Dimension)}
	case c.NonZero%2 != 0:
		return &ErrInvalidConfig{Reason: fmt.Sprintf("non-zero count must be even, got %d", c.NonZero)}
	}
	return nil
}

// Sparsity returns the fraction of non-zero trits in an encoded vector.
func (c Config) Sparsity() float64 {
	if c.Dimension == 0 {
		return 0
	}
	return float64(c.NonZero) / float64(c.Dimension)
}
