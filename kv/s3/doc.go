// Package s3 implements kv.Store on Amazon S3 and S3-compatible endpoints.
//
// A kv bucket is an S3 bucket. Keys are stored verbatim as object keys
// below an optional root prefix.
package s3
