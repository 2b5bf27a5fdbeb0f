package minio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/patternmon/kv"
	"github.com/hupe1980/patternmon/testutil"
)

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := "localhost:9000"
	bucketName := "test-patternmon"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucketName)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}))
	}

	prefix := fmt.Sprintf("contract-%d", time.Now().UnixNano())
	testutil.RunBucketContract(t, NewStore(client, prefix), bucketName)
}

func TestClassify(t *testing.T) {
	assert.Nil(t, classify("op", nil, kv.ErrNotFound))

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no such bucket", minio.ErrorResponse{Code: "NoSuchBucket", StatusCode: http.StatusNotFound}, kv.ErrNoSuchStore},
		{"no such key", minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}, kv.ErrNotFound},
		{"access denied", minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}, kv.ErrAccessDenied},
		{"forbidden status", minio.ErrorResponse{StatusCode: http.StatusForbidden}, kv.ErrAccessDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classify("op", tt.err, kv.ErrNotFound), tt.want)
		})
	}

	var oe *kv.OtherError
	assert.ErrorAs(t, classify("op", errors.New("connection reset"), kv.ErrNotFound), &oe)
}
