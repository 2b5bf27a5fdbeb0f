package s3

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/hupe1980/patternmon/kv"
)

// classify maps an S3 error onto the kv error kinds. notFound selects what a
// 404 means for the calling operation (kv.ErrNoSuchStore for bucket calls,
// kv.ErrNotFound for object calls).
func classify(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}

	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return kv.ErrNoSuchStore
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return notFound
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return notFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket":
			return kv.ErrNoSuchStore
		case "NoSuchKey", "NotFound":
			return notFound
		case "AccessDenied", "Forbidden", "AllAccessDisabled", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return fmt.Errorf("%w: %s: %w", kv.ErrAccessDenied, op, err)
		}
	}

	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusForbidden, http.StatusUnauthorized:
			return fmt.Errorf("%w: %s: %w", kv.ErrAccessDenied, op, err)
		case http.StatusNotFound:
			return notFound
		}
	}
	return kv.Other(op, err)
}
