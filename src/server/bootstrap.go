package server

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/drive-clone/api/src/config"
	"github.com/drive-clone/api/src/drivers/storage"
)

// SchemaOwner is a repository that creates its own tables
type SchemaOwner interface {
	EnsureTable(ctx context.Context) error
}

// EnsureSchema creates every table the API needs. It is idempotent.
func EnsureSchema(ctx context.Context, owners ...SchemaOwner) error {
	for _, owner := range owners {
		if err := owner.EnsureTable(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// NewMinioBlobStore connects to the S3 backend and makes sure the bucket exists
func NewMinioBlobStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*storage.MinioStore, error) {
	store, err := storage.NewMinioStore(storage.MinioConfig{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		UseSSL:    cfg.S3UseSSL,
		URLTTL:    cfg.BlobURLTTL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("s3 blob store init failed: %w", err)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("s3 bucket check failed: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"endpoint": cfg.S3Endpoint,
		"bucket":   cfg.S3Bucket,
	}).Info("S3 blob store ready")
	return store, nil
}
