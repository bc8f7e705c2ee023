package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of *s3.Client the blob store needs.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client builds a client for AWS or any S3 compatible endpoint.
// Without static keys the default credential chain is used.
func NewS3Client(ctx context.Context, accessKeyID, accessKeySecret, region, baseEndpoint string) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if accessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, accessKeySecret, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing S3 client: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if baseEndpoint != "" {
			o.BaseEndpoint = aws.String(baseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// S3BlobStore keeps the document as a single object.
type S3BlobStore struct {
	client S3API
	bucket string
	key    string
}

func NewS3BlobStore(client S3API, bucket, key string) *S3BlobStore {
	return &S3BlobStore{
		client: client,
		bucket: bucket,
		key:    key,
	}
}

func (s *S3BlobStore) Load(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("error getting s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

func (s *S3BlobStore) Save(ctx context.Context, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("error putting s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return nil
}

func (s *S3BlobStore) Close() error {
	return nil
}
