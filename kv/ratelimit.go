package kv

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedStore wraps a Store and throttles every bucket operation with a
// shared token bucket.
type RateLimitedStore struct {
	inner   Store
	limiter *rate.Limiter
}

// NewRateLimitedStore limits inner to opsPerSec operations per second with
// the given burst. A non-positive opsPerSec returns inner unchanged.
func NewRateLimitedStore(inner Store, opsPerSec float64, burst int) Store {
	if opsPerSec <= 0 {
		return inner
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedStore{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(opsPerSec), burst),
	}
}

// Open opens the bucket on the wrapped store.
func (s *RateLimitedStore) Open(ctx context.Context, name string) (Bucket, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &rateLimitedBucket{inner: b, limiter: s.limiter}, nil
}

type rateLimitedBucket struct {
	inner   Bucket
	limiter *rate.Limiter
}

func (b *rateLimitedBucket) wait(ctx context.Context, op string) error {
	return Other(op, b.limiter.Wait(ctx))
}

func (b *rateLimitedBucket) Get(ctx context.Context, key string) ([]byte, error) {
	if err := b.wait(ctx, "get"); err != nil {
		return nil, err
	}
	return b.inner.Get(ctx, key)
}

func (b *rateLimitedBucket) Set(ctx context.Context, key string, value []byte) error {
	if err := b.wait(ctx, "set"); err != nil {
		return err
	}
	return b.inner.Set(ctx, key, value)
}

func (b *rateLimitedBucket) Delete(ctx context.Context, key string) error {
	if err := b.wait(ctx, "delete"); err != nil {
		return err
	}
	return b.inner.Delete(ctx, key)
}

func (b *rateLimitedBucket) Exists(ctx context.Context, key string) (bool, error) {
	if err := b.wait(ctx, "exists"); err != nil {
		return false, err
	}
	return b.inner.Exists(ctx, key)
}

func (b *rateLimitedBucket) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	if err := b.wait(ctx, "list"); err != nil {
		return nil, err
	}
	return b.inner.ListKeys(ctx, prefix)
}
