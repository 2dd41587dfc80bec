package config

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// SourceImageBucket stores the photos behind image-sourced recipes.
type SourceImageBucket struct {
	client  *s3.Client
	presign *s3.PresignClient
	name    string
}

// NewSourceImageBucket connects to cfg.S3BucketName. Credentials come from the
// default AWS chain.
func NewSourceImageBucket(ctx context.Context, cfg *Config) (*SourceImageBucket, error) {
	if cfg.S3BucketName == "" {
		return nil, fmt.Errorf("S3_BUCKET_NAME is not set")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	return &SourceImageBucket{
		client:  client,
		presign: s3.NewPresignClient(client),
		name:    cfg.S3BucketName,
	}, nil
}

func (b *SourceImageBucket) PutObject(ctx context.Context, key, contentType string, body io.Reader) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.name),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("s3: put %s/%s: %w", b.name, key, err)
	}
	return nil
}

// GeneratePresignedURL returns a GET URL for key that stops working after ttl.
func (b *SourceImageBucket) GeneratePresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := b.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("s3: presign %s/%s: %w", b.name, key, err)
	}
	return req.URL, nil
}
