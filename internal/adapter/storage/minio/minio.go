package minio

import (
	"context"
	"fmt"
	"io"

	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/platform/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// Storage is a MinIO bucket used as the image host's object store.
type Storage struct {
	client *minio.Client
	bucket string
	logger *logger.Logger
}

// NewStorage connects to endpoint and creates bucket when it is missing.
func NewStorage(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool, log *logger.Logger) (*Storage, error) {
	log.Info("Initializing MinIO storage",
		zap.String("endpoint", endpoint), zap.String("bucket", bucket), zap.Bool("use_ssl", useSSL))

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", endpoint, err)
	}

	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		exists, errExists := client.BucketExists(ctx, bucket)
		if errExists != nil || !exists {
			log.Error("Failed to make or verify bucket",
				zap.String("bucket", bucket), zap.NamedError("make_error", err), zap.NamedError("exists_error", errExists))
			return nil, fmt.Errorf("failed to make/verify bucket %s: %w", bucket, err)
		}
		log.Info("Bucket already exists", zap.String("bucket", bucket))
	} else {
		log.Info("Bucket created", zap.String("bucket", bucket))
	}

	return &Storage{client: client, bucket: bucket, logger: log.Named("MinIOStorage")}, nil
}

func (s *Storage) PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		s.logger.Error("PutObject failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to upload object %s to bucket %s: %w", key, s.bucket, err)
	}
	s.logger.Debug("Object uploaded", zap.String("key", info.Key), zap.String("etag", info.ETag), zap.Int64("size", info.Size))
	return nil
}

func (s *Storage) RemoveObject(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		s.logger.Error("RemoveObject failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// BaseURL is http(s)://<endpoint>/<bucket>.
func (s *Storage) BaseURL() string {
	return fmt.Sprintf("%s/%s", s.client.EndpointURL().String(), s.bucket)
}
