package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config holds the settings for the S3-compatible media bucket.
type S3Config struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
	UsePathStyle  bool
}

// S3Store re-hosts media artifacts into an S3-compatible bucket with public
// read access.
type S3Store struct {
	cfg    S3Config
	client *s3.Client
}

// NewS3Store validates the configuration and builds the S3 client.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage: s3 bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("storage: s3 region is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("storage: s3 credentials are required")
	}
	if cfg.PublicBaseURL == "" {
		return nil, fmt.Errorf("storage: s3 public base url is required")
	}

	options := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: cfg.UsePathStyle,
	}
	if cfg.Endpoint != "" {
		options.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	return &S3Store{cfg: cfg, client: s3.New(options)}, nil
}

// Put uploads the object and returns its public URL.
func (s *S3Store) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("storage: no data to upload")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("storage: upload to s3: %w", err)
	}
	return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + key, nil
}
