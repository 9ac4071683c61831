package objectstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"system_model_importer/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// minioAPI is the subset of *minio.Client the store uses.
type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type MinIOStore struct {
	client minioAPI
	bucket string
	region string
	logger *slog.Logger
}

func NewMinIOStore(cfg config.MinIOConfig, logger *slog.Logger) (*MinIOStore, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client failed (endpoint=%s): %w", endpoint, err)
	}
	return newMinIOStore(client, cfg.Bucket, cfg.Region, logger), nil
}

func newMinIOStore(client minioAPI, bucket, region string, logger *slog.Logger) *MinIOStore {
	return &MinIOStore{
		client: client,
		bucket: strings.TrimSpace(bucket),
		region: strings.TrimSpace(region),
		logger: storeLogger(logger, "minio"),
	}
}

func (s *MinIOStore) Location() string {
	return s.bucket
}

func (s *MinIOStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s failed: %w", s.bucket, err)
	}
	if exists {
		s.logger.Debug("bucket exists", "bucket", s.bucket)
		return nil
	}

	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
	if err != nil {
		// Another importer may have created it between the two calls.
		if minio.ToErrorResponse(err).Code == "BucketAlreadyOwnedByYou" {
			return nil
		}
		return fmt.Errorf("create bucket %s failed: %w", s.bucket, err)
	}
	s.logger.Info("bucket created", "bucket", s.bucket)
	return nil
}

func (s *MinIOStore) PutFile(ctx context.Context, key, localPath, contentType string) (int64, error) {
	objectKey, err := normalizeObjectKey(key)
	if err != nil {
		return 0, err
	}
	source, err := checkLocalSource(localPath)
	if err != nil {
		return 0, err
	}
	if strings.TrimSpace(contentType) == "" {
		contentType = ContentTypeOctetStream
	}

	start := time.Now()
	info, err := s.client.FPutObject(ctx, s.bucket, objectKey, source, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return 0, fmt.Errorf("put object %s/%s failed: %w", s.bucket, objectKey, err)
	}

	s.logger.Info(
		"put object success",
		"bucket", s.bucket,
		"key", objectKey,
		"bytes", info.Size,
		"cost_ms", time.Since(start).Milliseconds(),
	)
	return info.Size, nil
}
