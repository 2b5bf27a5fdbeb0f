package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/hupe1980/patternmon/kv"
)

// Store implements kv.Store for MinIO and S3-compatible storage.
type Store struct {
	client *minio.Client
	prefix string
}

// NewStore creates a new MinIO store.
// rootPrefix is prepended to all keys (e.g. "patternmon/").
func NewStore(client *minio.Client, rootPrefix string) *Store {
	return &Store{
		client: client,
		prefix: strings.Trim(rootPrefix, "/"),
	}
}

// Open checks that the MinIO bucket exists.
func (s *Store) Open(ctx context.Context, name string) (kv.Bucket, error) {
	ok, err := s.client.BucketExists(ctx, name)
	if err != nil {
		return nil, classify("open", err, kv.ErrNoSuchStore)
	}
	if !ok {
		return nil, kv.ErrNoSuchStore
	}
	return &bucket{store: s, name: name}, nil
}

type bucket struct {
	store *Store
	name  string
}

func (b *bucket) root() string {
	if b.store.prefix == "" {
		return ""
	}
	return b.store.prefix + "/"
}

func (b *bucket) key(k string) string { return b.root() + k }

func (b *bucket) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := b.store.client.GetObject(ctx, b.name, b.key(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, classify("get", err, kv.ErrNotFound)
	}
	defer func() { _ = obj.Close() }()

	// GetObject is lazy; errors surface on the first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, classify("get", err, kv.ErrNotFound)
	}
	return data, nil
}

func (b *bucket) Set(ctx context.Context, key string, value []byte) error {
	_, err := b.store.client.PutObject(ctx, b.name, b.key(key), bytes.NewReader(value), int64(len(value)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	return classify("set", err, kv.ErrNoSuchStore)
}

func (b *bucket) Delete(ctx context.Context, key string) error {
	err := b.store.client.RemoveObject(ctx, b.name, b.key(key), minio.RemoveObjectOptions{})
	if err := classify("delete", err, kv.ErrNotFound); err != nil && err != kv.ErrNotFound {
		return err
	}
	return nil
}

func (b *bucket) Exists(ctx context.Context, key string) (bool, error) {
	_, err := b.store.client.StatObject(ctx, b.name, b.key(key), minio.StatObjectOptions{})
	switch err := classify("exists", err, kv.ErrNotFound); err {
	case nil:
		return true, nil
	case kv.ErrNotFound:
		return false, nil
	default:
		return false, err
	}
}

func (b *bucket) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	root := b.root()

	var keys []string
	for obj := range b.store.client.ListObjects(ctx, b.name, minio.ListObjectsOptions{
		Prefix:    root + prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, classify("list", obj.Err, kv.ErrNoSuchStore)
		}
		if k, ok := strings.CutPrefix(obj.Key, root); ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

func classify(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchBucket":
		return kv.ErrNoSuchStore
	case "NoSuchKey", "NotFound":
		return notFound
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return fmt.Errorf("%w: %s: %w", kv.ErrAccessDenied, op, err)
	}
	switch resp.StatusCode {
	case http.StatusForbidden, http.StatusUnauthorized:
		return fmt.Errorf("%w: %s: %w", kv.ErrAccessDenied, op, err)
	case http.StatusNotFound:
		return notFound
	}
	return kv.Other(op, err)
}
