package persistent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/andreyxaxa/Image-Hosting/pkg/s3client"
	"github.com/andreyxaxa/Image-Hosting/pkg/types/errs"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// s3API is the subset of *s3.Client used by ImageBlobRepo.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type presignFunc func(ctx context.Context, in *s3.GetObjectInput, ttl time.Duration) (string, error)

type ImageBlobRepo struct {
	client    s3API
	presigner presignFunc
	bucket    string
}

func NewImageBlobRepo(s3c *s3client.S3Client, bucket string) *ImageBlobRepo {
	presigner := s3c.Presigner

	return &ImageBlobRepo{
		client: s3c.Client,
		presigner: func(ctx context.Context, in *s3.GetObjectInput, ttl time.Duration) (string, error) {
			req, err := presigner.PresignGetObject(ctx, in, s3.WithPresignExpires(ttl))
			if err != nil {
				return "", err
			}

			return req.URL, nil
		},
		bucket: bucket,
	}
}

func (r *ImageBlobRepo) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("ImageBlobRepo - Put - r.client.PutObject: %w", err)
	}

	return nil
}

func (r *ImageBlobRepo) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("ImageBlobRepo - Get: %w", errs.ErrBlobNotFound)
		}
		return nil, fmt.Errorf("ImageBlobRepo - Get - r.client.GetObject: %w", err)
	}
	defer result.Body.Close()

	b, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("ImageBlobRepo - Get - io.ReadAll: %w", err)
	}

	return b, nil
}

// Delete treats a missing key as already deleted.
func (r *ImageBlobRepo) Delete(ctx context.Context, key string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("ImageBlobRepo - Delete - r.client.DeleteObject: %w", err)
	}

	return nil
}

// PresignGet issues an unauthenticated GET url valid for ttl. Expiry is
// enforced by the object store, not here.
func (r *ImageBlobRepo) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	url, err := r.presigner(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}, ttl)
	if err != nil {
		return "", fmt.Errorf("ImageBlobRepo - PresignGet - r.presigner: %w", err)
	}

	return url, nil
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}

	return false
}
