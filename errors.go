package patternmon

import (
	"fmt"

	"github.com/hupe1980/patternmon/encoder"
	"github.com/hupe1980/patternmon/kv"
)

// Re-exported so callers can classify Handle errors with one import.
var (
	// ErrParse matches bodies that are not valid JSON.
	ErrParse = encoder.ErrParse
	// ErrShape matches valid JSON bodies that are not objects.
	ErrShape = encoder.ErrShape
	// ErrNoSuchStore matches a missing bucket.
	ErrNoSuchStore = kv.ErrNoSuchStore
	// ErrAccessDenied matches an unauthorized store operation.
	ErrAccessDenied = kv.ErrAccessDenied
	// ErrNotFound matches a missing key on the read path.
	ErrNotFound = kv.ErrNotFound
)

// SerializeError reports a vector that could not be encoded or decoded.
//
// The original underlying error can be accessed via errors.Unwrap.
type SerializeError struct {
	Key   string
	Codec string
	cause error
}

func (e *SerializeError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("serialize vector (codec %s): %v", e.Codec, e.cause)
	}
	return fmt.Sprintf("serialize %s (codec %s): %v", e.Key, e.Codec, e.cause)
}

func (e *SerializeError) Unwrap() error { return e.cause }

// StoreError reports a failed key-value operation. The cause is always one
// of kv.ErrNoSuchStore, kv.ErrAccessDenied, kv.ErrNotFound or *kv.OtherError.
//
// The original underlying error can be accessed via errors.Unwrap.
type StoreError struct {
	Op     string
	Bucket string
	Key    string
	cause  error
}

func newStoreError(op, bucket, key string, err error) *StoreError {
	return &StoreError{Op: op, Bucket: bucket, Key: key, cause: kv.Other(op, err)}
}

func (e *StoreError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s bucket %q: %v", e.Op, e.Bucket, e.cause)
	}
	return fmt.Sprintf("%s %q in bucket %q: %v", e.Op, e.Key, e.Bucket, e.cause)
}

func (e *StoreError) Unwrap() error { return e.cause }
