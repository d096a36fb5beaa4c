package receipt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3Timeout = 30 * time.Second

// s3API is the subset of the S3 client used by S3Storage
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage implements the Storage interface on an S3 bucket
type S3Storage struct {
	client s3API
	bucket string
	prefix string
}

// NewS3Storage creates an S3Storage using the default AWS credential chain
func NewS3Storage(ctx context.Context, bucket, prefix string) (*S3Storage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return NewS3StorageWithClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// NewS3StorageWithClient creates an S3Storage with a custom client for testing
func NewS3StorageWithClient(client s3API, bucket, prefix string) *S3Storage {
	return &S3Storage{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (s *S3Storage) key(name string) string {
	return path.Join(s.prefix, name)
}

// Save uploads a file to the bucket
func (s *S3Storage) Save(filename string, data []byte) (string, error) {
	if err := validateImageName(filename); err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(context.Background(), s3Timeout)
	defer cancel()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(filename)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("uploading object: %w", err)
	}
	return filename, nil
}

// Get downloads a file from the bucket
func (s *S3Storage) Get(name string) ([]byte, error) {
	if err := validateImageName(name); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), s3Timeout)
	defer cancel()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return nil, fmt.Errorf("downloading object: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading object: %w", err)
	}
	return data, nil
}

// Delete removes a file from the bucket
func (s *S3Storage) Delete(name string) error {
	if err := validateImageName(name); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), s3Timeout)
	defer cancel()

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return fmt.Errorf("deleting object: %w", err)
	}
	return nil
}
