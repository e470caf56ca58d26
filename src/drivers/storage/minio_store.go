package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

// MinioConfig holds the S3 connection settings
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	URLTTL    time.Duration
}

// MinioStore keeps blobs as objects in one S3-compatible bucket and hands
// out presigned URLs.
type MinioStore struct {
	client *minio.Client
	bucket string
	urlTTL time.Duration
	logger *logrus.Logger
}

func NewMinioStore(cfg MinioConfig, logger *logrus.Logger) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return NewMinioStoreWithClient(client, cfg.Bucket, cfg.URLTTL, logger), nil
}

func NewMinioStoreWithClient(client *minio.Client, bucket string, urlTTL time.Duration, logger *logrus.Logger) *MinioStore {
	if urlTTL <= 0 {
		urlTTL = 15 * time.Minute
	}
	return &MinioStore{
		client: client,
		bucket: bucket,
		urlTTL: urlTTL,
		logger: logger,
	}
}

// EnsureBucket creates the bucket when it does not exist yet
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	s.logger.WithField("bucket", s.bucket).Info("Blob bucket created")
	return nil
}

// HealthCheck verifies the bucket is reachable
func (s *MinioStore) HealthCheck(ctx context.Context) error {
	if _, err := s.client.BucketExists(ctx, s.bucket); err != nil {
		return fmt.Errorf("minio health check failed: %w", err)
	}
	return nil
}

func (s *MinioStore) Put(ctx context.Context, r io.Reader, contentType string) (*BlobInfo, error) {
	id := uuid.NewString()
	info, err := s.client.PutObject(ctx, s.bucket, id, r, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"blob_id": id,
		"size":    info.Size,
	}).Debug("Blob stored")

	return &BlobInfo{ID: id, Size: info.Size, ContentType: contentType, ModTime: info.LastModified}, nil
}

func (s *MinioStore) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, id, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapMinioError(err, "get object")
	}
	// GetObject is lazy; Stat surfaces a missing key before the caller reads.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, mapMinioError(err, "get object")
	}
	return obj, nil
}

func (s *MinioStore) Stat(ctx context.Context, id string) (*BlobInfo, error) {
	info, err := s.client.StatObject(ctx, s.bucket, id, minio.StatObjectOptions{})
	if err != nil {
		return nil, mapMinioError(err, "stat object")
	}
	return &BlobInfo{ID: id, Size: info.Size, ContentType: info.ContentType, ModTime: info.LastModified}, nil
}

func (s *MinioStore) Delete(ctx context.Context, id string) error {
	if _, err := s.Stat(ctx, id); err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, id, minio.RemoveObjectOptions{}); err != nil {
		return mapMinioError(err, "remove object")
	}
	return nil
}

func (s *MinioStore) List(ctx context.Context) ([]BlobInfo, error) {
	var items []BlobInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}
		items = append(items, BlobInfo{
			ID:          obj.Key,
			Size:        obj.Size,
			ContentType: obj.ContentType,
			ModTime:     obj.LastModified,
		})
	}
	return items, nil
}

func (s *MinioStore) ViewURL(ctx context.Context, id, filename, contentType string) (string, error) {
	return s.presign(ctx, BlobGrant{BlobID: id, Filename: filename, ContentType: contentType, Disposition: DispositionInline})
}

func (s *MinioStore) DownloadURL(ctx context.Context, id, filename, contentType string) (string, error) {
	return s.presign(ctx, BlobGrant{BlobID: id, Filename: filename, ContentType: contentType, Disposition: DispositionAttachment})
}

func (s *MinioStore) presign(ctx context.Context, grant BlobGrant) (string, error) {
	if _, err := s.Stat(ctx, grant.BlobID); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("response-content-disposition", grant.ContentDisposition())
	if grant.ContentType != "" {
		params.Set("response-content-type", grant.ContentType)
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, grant.BlobID, s.urlTTL, params)
	if err != nil {
		return "", fmt.Errorf("presign object: %w", err)
	}
	return u.String(), nil
}

func mapMinioError(err error, op string) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchObject":
		return ErrBlobNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
