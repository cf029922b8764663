package storage

import (
	"context"
	"fmt"

	storageport "github.com/marcos-nsantos/asset-pipeline/internal/adapter/storage"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/config"
)

// NewProvider builds the configured storage variant. It runs once at startup;
// the result is passed to whoever needs it.
func NewProvider(ctx context.Context, cfg config.StorageConfig) (storageport.Provider, error) {
	switch cfg.Driver {
	case config.DriverLocal:
		return NewLocalStorage(cfg.Local, cfg.Bucket)
	case config.DriverS3:
		return NewS3Storage(cfg.S3, cfg.Bucket)
	case config.DriverMinio:
		s, err := NewMinioStorage(cfg.Minio, cfg.Bucket)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverGCS:
		return NewGCSStorage(ctx, cfg.GCS, cfg.Bucket)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
