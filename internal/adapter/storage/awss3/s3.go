package awss3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/platform/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

type Config struct {
	// Endpoint is empty for AWS itself, or host[:port] of an S3 compatible server.
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// endpointURL returns the custom endpoint with a scheme, or "".
func (c Config) endpointURL() string {
	if c.Endpoint == "" {
		return ""
	}
	if strings.HasPrefix(c.Endpoint, "http://") || strings.HasPrefix(c.Endpoint, "https://") {
		return strings.TrimRight(c.Endpoint, "/")
	}
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + strings.TrimRight(c.Endpoint, "/")
}

// Storage is an S3 bucket used as the image host's object store.
type Storage struct {
	client *s3.Client
	cfg    Config
	logger *logger.Logger
}

func NewStorage(ctx context.Context, cfg Config, log *logger.Logger) (*Storage, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := cfg.endpointURL()
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	s := &Storage{client: client, cfg: cfg, logger: log.Named("S3Storage")}
	if err := s.ensureBucketExists(ctx); err != nil {
		s.logger.Warn("Failed to ensure bucket exists", zap.String("bucket", cfg.Bucket), zap.Error(err))
	}
	return s, nil
}

func (s *Storage) ensureBucketExists(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.cfg.Bucket)})
	if err == nil {
		s.logger.Info("Bucket already exists", zap.String("bucket", s.cfg.Bucket))
		return nil
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(s.cfg.Bucket)}
	if s.cfg.Region != "" && s.cfg.Region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.cfg.Region),
		}
	}
	if _, err := s.client.CreateBucket(ctx, input); err != nil {
		return err
	}
	s.logger.Info("Bucket created", zap.String("bucket", s.cfg.Bucket))
	return nil
}

func (s *Storage) PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		s.logger.Error("Failed to upload file to S3", zap.String("key", key), zap.Error(err))
		return err
	}
	s.logger.Debug("File uploaded to S3", zap.String("key", key), zap.Int64("size", size))
	return nil
}

func (s *Storage) RemoveObject(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Error("Failed to delete file from S3", zap.String("key", key), zap.Error(err))
	}
	return err
}

// BaseURL is the path style bucket URL on a custom endpoint, or the virtual
// hosted URL on AWS.
func (s *Storage) BaseURL() string {
	return baseURL(s.cfg)
}

func baseURL(cfg Config) string {
	if endpoint := cfg.endpointURL(); endpoint != "" {
		return endpoint + "/" + cfg.Bucket
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, region)
}
