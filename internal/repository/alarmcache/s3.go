package alarmcache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	domain "github.com/cofrn/cofrn-monitor/internal/domain/alarm"
)

// S3API is the subset of the S3 client used by S3Repository.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Repository stores the alarm cache as one object. The version token is the
// object's ETag; writes are conditional on it.
type S3Repository struct {
	client S3API
	bucket string
	key    string
}

// NewS3Repository creates a repository for the object at bucket/key.
func NewS3Repository(client S3API, bucket, key string) *S3Repository {
	return &S3Repository{
		client: client,
		bucket: bucket,
		key:    key,
	}
}

// Load fetches and decodes the cache object.
func (r *S3Repository) Load(ctx context.Context) (*domain.Document, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("get s3://%s/%s: %w", r.bucket, r.key, err)
	}

	defer func() {
		_ = out.Body.Close()
	}()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", r.bucket, r.key, err)
	}

	cache, err := decode(data)
	if err != nil {
		return corrupt(aws.ToString(out.ETag), err)
	}

	return &domain.Document{
		Cache:   cache,
		Version: aws.ToString(out.ETag),
	}, nil
}

// Save writes the cache object, conditional on the loaded ETag or, for a new
// document, on the object not existing.
func (r *S3Repository) Save(ctx context.Context, doc *domain.Document) error {
	data, err := encode(doc.Cache)
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(r.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	}

	if doc.Version == "" {
		input.IfNoneMatch = aws.String("*")
	} else {
		input.IfMatch = aws.String(doc.Version)
	}

	out, err := r.client.PutObject(ctx, input)
	if err != nil {
		if isPreconditionFailure(err) {
			return ErrConflict
		}

		return fmt.Errorf("put s3://%s/%s: %w", r.bucket, r.key, err)
	}

	doc.Version = aws.ToString(out.ETag)

	return nil
}

func isPreconditionFailure(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	switch apiErr.ErrorCode() {
	case "PreconditionFailed", "ConditionalRequestConflict":
		return true
	default:
		return false
	}
}
