package s3

import (
	"bytes"
	"context"
	"io"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/hupe1980/patternmon/kv"
)

// Client is the subset of *s3.Client used by Store.
type Client interface {
	manager.UploadAPIClient
	s3.ListObjectsV2APIClient
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Store implements kv.Store for S3.
type Store struct {
	client   Client
	prefix   string
	uploader *manager.Uploader
}

// NewStore creates a new S3 store.
// rootPrefix is prepended to all keys (e.g. "patternmon/").
func NewStore(client Client, rootPrefix string) *Store {
	return &Store{
		client: client,
		prefix: strings.Trim(rootPrefix, "/"),
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.Concurrency = 1
		}),
	}
}

// Open checks that the S3 bucket exists and is reachable.
func (s *Store) Open(ctx context.Context, name string) (kv.Bucket, error) {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(name),
	})
	if err != nil {
		return nil, classify("open", err, kv.ErrNoSuchStore)
	}
	return &bucket{store: s, name: name}, nil
}

type bucket struct {
	store *Store
	name  string
}

func (b *bucket) key(k string) string {
	if b.store.prefix == "" {
		return k
	}
	return b.store.prefix + "/" + k
}

func (b *bucket) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := b.store.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(b.key(key)),
	})
	if err != nil {
		return nil, classify("get", err, kv.ErrNotFound)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, kv.Other("get", err)
	}
	return data, nil
}

func (b *bucket) Set(ctx context.Context, key string, value []byte) error {
	_, err := b.store.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.name),
		Key:         aws.String(b.key(key)),
		Body:        bytes.NewReader(value),
		ContentType: aws.String("application/octet-stream"),
	})
	return classify("set", err, kv.ErrNoSuchStore)
}

func (b *bucket) Delete(ctx context.Context, key string) error {
	_, err := b.store.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(b.key(key)),
	})
	if err := classify("delete", err, kv.ErrNotFound); err != nil && err != kv.ErrNotFound {
		return err
	}
	return nil
}

func (b *bucket) Exists(ctx context.Context, key string) (bool, error) {
	_, err := b.store.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(b.key(key)),
	})
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
	root := ""
	if b.store.prefix != "" {
		root = b.store.prefix + "/"
	}

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(b.store.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.name),
		Prefix: aws.String(root + prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify("list", err, kv.ErrNoSuchStore)
		}
		for _, obj := range page.Contents {
			if k, ok := strings.CutPrefix(aws.ToString(obj.Key), root); ok {
				keys = append(keys, k)
			}
		}
	}
	slices.Sort(keys)
	return keys, nil
}
