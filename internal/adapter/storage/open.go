package storage

import (
	"context"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/adapter/storage/awss3"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/adapter/storage/imagehost"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/adapter/storage/minio"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/config"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/platform/logger"
	"go.uber.org/zap"
)

// OpenImageHost connects the configured object store driver and wraps it in
// an image host.
func OpenImageHost(ctx context.Context, cfg *config.Config, log *logger.Logger) (*imagehost.Host, error) {
	var objects imagehost.ObjectStore
	switch cfg.ImageStoreDriver {
	case config.DriverMinIO:
		s, err := minio.NewStorage(ctx, cfg.ImageStoreEndpoint, cfg.ImageStoreAccessKey, cfg.ImageStoreSecretKey,
			cfg.ImageStoreBucket, cfg.ImageStoreUseSSL, log)
		if err != nil {
			return nil, err
		}
		objects = s
	case config.DriverS3:
		s, err := awss3.NewStorage(ctx, awss3.Config{
			Endpoint:  cfg.ImageStoreEndpoint,
			Region:    cfg.ImageStoreRegion,
			AccessKey: cfg.ImageStoreAccessKey,
			SecretKey: cfg.ImageStoreSecretKey,
			Bucket:    cfg.ImageStoreBucket,
			UseSSL:    cfg.ImageStoreUseSSL,
		}, log)
		if err != nil {
			return nil, err
		}
		objects = s
	default:
		return nil, fmt.Errorf("unsupported image store driver %q", cfg.ImageStoreDriver)
	}

	host, err := imagehost.New(objects, imagehost.Options{
		DeliveryURL: cfg.ImageDeliveryURL,
		MaxBytes:    cfg.MaxUploadBytes,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("image host: %w", err)
	}
	log.Info("Image host ready", zap.String("driver", cfg.ImageStoreDriver), zap.String("bucket", cfg.ImageStoreBucket))
	return host, nil
}
