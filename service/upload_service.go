package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"system_model_importer/infrastructure/objectstore"
)

var ErrObjectStoreNil = errors.New("object store is nil")

// ArtifactUploadService puts local artifacts into the object store under a
// freshly derived key.
type ArtifactUploadService struct {
	Store       objectstore.ObjectStore
	PathService *ArtifactPathService
	logger      *slog.Logger
}

func NewArtifactUploadService(store objectstore.ObjectStore, logger *slog.Logger) *ArtifactUploadService {
	return &ArtifactUploadService{
		Store:       store,
		PathService: NewArtifactPathService(),
		logger:      serviceLogger(logger).With("service", "ArtifactUploadService"),
	}
}

// EnsureBucket is the startup precondition for Upload.
func (s *ArtifactUploadService) EnsureBucket(ctx context.Context) error {
	if s.Store == nil {
		return fmt.Errorf("%w: %w", ErrStartupFailed, ErrObjectStoreNil)
	}
	if err := s.Store.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStartupFailed, err)
	}
	s.logger.Info("bucket ready", "location", s.Store.Location())
	return nil
}

// Upload returns the storage key the bytes were written under. Every error
// wraps ErrUploadFailed.
func (s *ArtifactUploadService) Upload(ctx context.Context, filePath, modelName string) (string, error) {
	if s.Store == nil {
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, ErrObjectStoreNil)
	}
	pathService := s.PathService
	if pathService == nil {
		pathService = NewArtifactPathService()
	}

	key, err := pathService.BuildStorageKey(filePath, modelName)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	written, err := s.Store.PutFile(ctx, key, filePath, objectstore.ContentTypeOctetStream)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrUploadFailed, filePath, err)
	}

	s.logger.Info(
		"file uploaded",
		"file", filePath,
		"storage_key", key,
		"location", s.Store.Location(),
		"bytes", written,
	)
	return key, nil
}
