// Package kv defines the key-value store the pattern monitor persists
// vectors into, plus in-memory and local-filesystem implementations.
//
// A Store hands out named Buckets. Every backend classifies its failures
// into ErrNoSuchStore, ErrAccessDenied or *OtherError, so callers can react
// to them without knowing the backend.
//
// Cloud backends live in subpackages:
//   - kv/s3: Amazon S3 (and compatible endpoints) via aws-sdk-go-v2
//   - kv/minio: MinIO via minio-go
//   - kv/dynamodb: Amazon DynamoDB tables
//   - kv/sqlite: a local SQLite database
package kv
