package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/patternmon/internal/config"
	"github.com/hupe1980/patternmon/kv"
	kvdynamodb "github.com/hupe1980/patternmon/kv/dynamodb"
	kvminio "github.com/hupe1980/patternmon/kv/minio"
	kvs3 "github.com/hupe1980/patternmon/kv/s3"
	kvsqlite "github.com/hupe1980/patternmon/kv/sqlite"
)

// openStore builds the configured backend. The returned close function is
// never nil.
func openStore(ctx context.Context, cfg *config.Config) (kv.Store, func() error, error) {
	noop := func() error { return nil }
	sc := cfg.Store

	var (
		store   kv.Store
		closeFn = noop
	)
	switch sc.Backend {
	case config.BackendMemory:
		// A memory store is only useful within one process, so the bucket
		// always exists.
		store = kv.NewMemoryStore(cfg.Bucket)

	case config.BackendLocal:
		s := kv.NewLocalStore(sc.Local.Dir)
		if sc.CreateBucket {
			if err := s.CreateBucket(cfg.Bucket); err != nil {
				return nil, noop, err
			}
		}
		store = s

	case config.BackendSQLite:
		s, err := kvsqlite.Open(sc.SQLite.Path)
		if err != nil {
			return nil, noop, err
		}
		if sc.CreateBucket {
			if err := s.CreateBucket(ctx, cfg.Bucket); err != nil {
				_ = s.Close()
				return nil, noop, err
			}
		}
		store, closeFn = s, s.Close

	case config.BackendS3:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(sc.S3.Region))
		if err != nil {
			return nil, noop, fmt.Errorf("loading AWS config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if sc.S3.Endpoint != "" {
				o.BaseEndpoint = aws.String(sc.S3.Endpoint)
			}
			o.UsePathStyle = sc.S3.UsePathStyle
		})
		store = kvs3.NewStore(client, sc.S3.Prefix)

	case config.BackendMinIO:
		client, err := minio.New(sc.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(sc.MinIO.AccessKey, sc.MinIO.SecretKey, ""),
			Secure: sc.MinIO.Secure,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("creating MinIO client: %w", err)
		}
		store = kvminio.NewStore(client, sc.MinIO.Prefix)

	case config.BackendDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(sc.DynamoDB.Region))
		if err != nil {
			return nil, noop, fmt.Errorf("loading AWS config: %w", err)
		}
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if sc.DynamoDB.Endpoint != "" {
				o.BaseEndpoint = aws.String(sc.DynamoDB.Endpoint)
			}
		})
		store = kvdynamodb.NewStore(client)

	default:
		return nil, noop, fmt.Errorf("unknown store backend %q", sc.Backend)
	}

	if sc.RateLimit > 0 {
		store = kv.NewRateLimitedStore(store, sc.RateLimit, sc.RateBurst)
	}
	if sc.CacheBytes > 0 {
		store = kv.NewCachingStore(store, sc.CacheBytes)
	}
	return store, closeFn, nil
}
