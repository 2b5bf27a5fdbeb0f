package kv

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSuchStore is returned when the named bucket does not exist.
	ErrNoSuchStore = errors.New("keyvalue error: no such store")

	// ErrAccessDenied is returned when the caller is not authorized.
	ErrAccessDenied = errors.New("keyvalue error: access denied")

	// ErrNotFound is returned by Get when the key holds no value.
	ErrNotFound = errors.New("keyvalue error: key not found")
)

// OtherError wraps any backend failure that is neither ErrNoSuchStore nor
// ErrAccessDenied.
type OtherError struct {
	Op  string
	Err error
}

func (e *OtherError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("keyvalue error: %v", e.Err)
	}
	return fmt.Sprintf("keyvalue error: %s: %v", e.Op, e.Err)
}

// Unwrap returns the backend error.
func (e *OtherError) Unwrap() error { return e.Err }

// Other wraps err in an *OtherError unless it is nil or already classified.
// Context cancellation is wrapped too but stays matchable with errors.Is.
func Other(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsClassified(err) {
		return err
	}
	return &OtherError{Op: op, Err: err}
}

// IsClassified reports whether err already carries one of the store error
// kinds (including ErrNotFound).
func IsClassified(err error) bool {
	var oe *OtherError
	return errors.Is(err, ErrNoSuchStore) ||
		errors.Is(err, ErrAccessDenied) ||
		errors.Is(err, ErrNotFound) ||
		errors.As(err, &oe)
}
