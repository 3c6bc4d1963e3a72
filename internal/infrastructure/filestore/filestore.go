package filestore

import (
	"context"

	"github.com/sirupsen/logrus"

	config "github.com/avatarctic/quantum-studio/configs"
	"github.com/avatarctic/quantum-studio/internal/core/ports"
)

// New selects S3 when a bucket is configured and the local upload directory otherwise.
func New(ctx context.Context, cfg *config.StorageConfig, logger *logrus.Logger) (ports.FileStore, error) {
	if cfg.S3Bucket != "" {
		client, err := NewS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if logger != nil {
			logger.WithFields(logrus.Fields{"bucket": cfg.S3Bucket, "prefix": cfg.S3Prefix}).Info("storing uploads in s3")
		}
		return NewS3Store(cfg.S3Bucket, cfg.S3Prefix, client), nil
	}
	if logger != nil {
		logger.WithField("dir", cfg.UploadDir).Info("storing uploads on local disk")
	}
	return NewLocalStore(cfg.UploadDir)
}
