// Package minio implements kv.Store on MinIO and other S3-compatible
// servers through minio-go.
package minio
