package kv

import "context"

// Store opens named buckets.
type Store interface {
	// Open returns a handle to an existing bucket.
	// It fails with ErrNoSuchStore if the bucket does not exist.
	Open(ctx context.Context, name string) (Bucket, error)
}

// Bucket is a flat namespace of keys holding byte values.
// Implementations must be safe for concurrent use.
type Bucket interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Exists reports whether key holds a value.
	Exists(ctx context.Context, key string) (bool, error)
	// ListKeys returns the keys starting with prefix in ascending order.
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}
