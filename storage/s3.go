package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"schooldesk_go/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ArchiveStorage moves log archives between the application and S3.
type ArchiveStorage struct {
	client *s3.Client
	bucket string
}

// NewArchiveStorage builds a client from the default AWS credential chain.
// Returns an error when no region is configured so callers can keep the
// archival feature disabled instead of failing at upload time.
func NewArchiveStorage(ctx context.Context) (*ArchiveStorage, error) {
	region := config.AppConfig.AWSRegion
	if region == "" {
		return nil, fmt.Errorf("AWS_REGION not configured")
	}
	if config.AppConfig.S3BucketName == "" {
		return nil, fmt.Errorf("S3_BUCKET_NAME not configured")
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %v", err)
	}

	return &ArchiveStorage{
		client: s3.NewFromConfig(cfg),
		bucket: config.AppConfig.S3BucketName,
	}, nil
}

// Upload stores the given buffer under key with the supplied content type.
func (s *ArchiveStorage) Upload(ctx context.Context, key string, data *bytes.Buffer, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data.Bytes()),
		ContentType: aws.String(contentType),
	})
	return err
}

// Download streams the object stored under key. The caller owns the reader.
func (s *ArchiveStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return result.Body, nil
}
