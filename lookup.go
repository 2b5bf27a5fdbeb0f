package patternmon

import (
	"context"

	"github.com/hupe1980/patternmon/codec"
	"github.com/hupe1980/patternmon/kv"
	"github.com/hupe1980/patternmon/vsa"
)

// Lookup reads and decodes the vector stored under key.
// A missing key matches kv.ErrNotFound.
func Lookup(ctx context.Context, store kv.Store, bucket, key string, c codec.Codec) (*vsa.SparseVec, error) {
	b, err := store.Open(ctx, bucket)
	if err != nil {
		return nil, newStoreError("open", bucket, "", err)
	}
	data, err := b.Get(ctx, key)
	if err != nil {
		return nil, newStoreError("get", bucket, key, err)
	}
	return deserialize(c, key, data)
}

// Keys lists the persisted keys starting with prefix.
func Keys(ctx context.Context, store kv.Store, bucket, prefix string) ([]string, error) {
	b, err := store.Open(ctx, bucket)
	if err != nil {
		return nil, newStoreError("open", bucket, "", err)
	}
	keys, err := b.ListKeys(ctx, prefix)
	if err != nil {
		return nil, newStoreError("list", bucket, prefix, err)
	}
	return keys, nil
}

// LookupField reads the semantic vector last stored for a field name.
func (m *Monitor) LookupField(ctx context.Context, field string) (*vsa.SparseVec, error) {
	return Lookup(ctx, m.store, m.opts.bucket, SemanticKey(field), m.opts.codec)
}

// LookupBundle reads the bundle vector last stored for a subject.
func (m *Monitor) LookupBundle(ctx context.Context, subject string) (*vsa.SparseVec, error) {
	return Lookup(ctx, m.store, m.opts.bucket, BundleKey(subject), m.opts.codec)
}
