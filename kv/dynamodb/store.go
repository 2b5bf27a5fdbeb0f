package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/hupe1980/patternmon/kv"
)

const (
	attrKey   = "key"
	attrValue = "value"
)

// Client is the subset of *dynamodb.Client used by Store.
type Client interface {
	dynamodb.ScanAPIClient
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Store implements kv.Store with one DynamoDB table per bucket.
type Store struct {
	client Client
}

// NewStore creates a new DynamoDB store.
func NewStore(client Client) *Store {
	return &Store{client: client}
}

// Open checks that the table exists.
func (s *Store) Open(ctx context.Context, name string) (kv.Bucket, error) {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(name),
	})
	if err != nil {
		return nil, classify("open", err)
	}
	return &table{client: s.client, name: name}, nil
}

type table struct {
	client Client
	name   string
}

func itemKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrKey: &types.AttributeValueMemberS{Value: key},
	}
}

func (t *table) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(t.name),
		Key:            itemKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, classify("get", err)
	}
	if resp.Item == nil {
		return nil, kv.ErrNotFound
	}
	v, ok := resp.Item[attrValue].(*types.AttributeValueMemberB)
	if !ok {
		return nil, kv.Other("get", fmt.Errorf("item %q has no binary %q attribute", key, attrValue))
	}
	return v.Value, nil
}

func (t *table) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.name),
		Item: map[string]types.AttributeValue{
			attrKey:   &types.AttributeValueMemberS{Value: key},
			attrValue: &types.AttributeValueMemberB{Value: value},
		},
	})
	return classify("set", err)
}

func (t *table) Delete(ctx context.Context, key string) error {
	_, err := t.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(t.name),
		Key:       itemKey(key),
	})
	return classify("delete", err)
}

func (t *table) Exists(ctx context.Context, key string) (bool, error) {
	resp, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(t.name),
		Key:                  itemKey(key),
		ProjectionExpression: aws.String("#k"),
		ExpressionAttributeNames: map[string]string{
			"#k": attrKey,
		},
	})
	if err != nil {
		return false, classify("exists", err)
	}
	return resp.Item != nil, nil
}

func (t *table) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	input := &dynamodb.ScanInput{
		TableName:                aws.String(t.name),
		ProjectionExpression:     aws.String("#k"),
		ExpressionAttributeNames: map[string]string{"#k": attrKey},
	}
	if prefix != "" {
		input.FilterExpression = aws.String("begins_with(#k, :p)")
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":p": &types.AttributeValueMemberS{Value: prefix},
		}
	}

	var keys []string
	paginator := dynamodb.NewScanPaginator(t.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify("list", err)
		}
		for _, item := range page.Items {
			if k, ok := item[attrKey].(*types.AttributeValueMemberS); ok {
				keys = append(keys, k.Value)
			}
		}
	}
	slices.Sort(keys)
	return keys, nil
}

func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var rnf *types.ResourceNotFoundException
	if errors.As(err, &rnf) {
		return kv.ErrNoSuchStore
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ResourceNotFoundException":
			return kv.ErrNoSuchStore
		case "AccessDeniedException", "UnrecognizedClientException", "InvalidSignatureException":
			return fmt.Errorf("%w: %s: %w", kv.ErrAccessDenied, op, err)
		}
	}
	return kv.Other(op, err)
}
