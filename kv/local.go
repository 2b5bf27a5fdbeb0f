package kv

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// LocalStore implements Store on the local file system.
//
// Every bucket is a directory below root and every key is one file inside
// it. File names are the base64url form of the key, so keys may contain any
// byte including path separators.
type LocalStore struct {
	root string
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// CreateBucket creates the directory backing the named bucket.
func (s *LocalStore) CreateBucket(name string) error {
	if err := validBucketName(name); err != nil {
		return err
	}
	return classifyFS("create bucket", os.MkdirAll(filepath.Join(s.root, name), 0o755))
}

// Open returns the named bucket. The bucket directory must exist.
func (s *LocalStore) Open(_ context.Context, name string) (Bucket, error) {
	if err := validBucketName(name); err != nil {
		return nil, err
	}
	dir := filepath.Join(s.root, name)
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSuchStore
		}
		return nil, classifyFS("open", err)
	}
	if !info.IsDir() {
		return nil, ErrNoSuchStore
	}
	return &localBucket{dir: dir}, nil
}

func validBucketName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return &OtherError{Op: "open", Err: fmt.Errorf("invalid bucket name %q", name)}
	}
	return nil
}

type localBucket struct {
	dir string
}

func (b *localBucket) path(key string) string {
	return filepath.Join(b.dir, base64.RawURLEncoding.EncodeToString([]byte(key)))
}

func (b *localBucket) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(b.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, classifyFS("get", err)
	}
	return data, nil
}

// Set writes to a temporary file and renames it into place, so readers never
// observe a partial value.
func (b *localBucket) Set(_ context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(b.dir, ".tmp-*")
	if err != nil {
		return classifyFS("set", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		cleanup()
		return classifyFS("set", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return classifyFS("set", err)
	}
	if err := os.Rename(tmpName, b.path(key)); err != nil {
		cleanup()
		return classifyFS("set", err)
	}
	return nil
}

func (b *localBucket) Delete(_ context.Context, key string) error {
	err := os.Remove(b.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return classifyFS("delete", err)
	}
	return nil
}

func (b *localBucket) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(b.path(key))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, classifyFS("exists", err)
	}
}

func (b *localBucket) ListKeys(_ context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, classifyFS("list", err)
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".tmp-") {
			continue
		}
		raw, err := base64.RawURLEncoding.DecodeString(e.Name())
		if err != nil {
			continue // not ours
		}
		if k := string(raw); strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

func classifyFS(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %s: %w", ErrAccessDenied, op, err)
	}
	return Other(op, err)
}
