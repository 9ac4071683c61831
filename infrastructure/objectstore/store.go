// Package objectstore holds the backends the importer writes artifact bytes to.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const ContentTypeOctetStream = "application/octet-stream"

var (
	ErrObjectKeyRequired             = errors.New("object key is required")
	ErrLocalSourceFileNotFound       = errors.New("local source file not found")
	ErrLocalSourcePathNotRegularFile = errors.New("local source path is not a regular file")
)

// ObjectStore is the put side of an object store.
type ObjectStore interface {
	// EnsureBucket makes sure the bucket (or root directory) exists.
	// Calling it again after success is a no-op.
	EnsureBucket(ctx context.Context) error
	// PutFile copies the local file to key and returns the bytes written.
	PutFile(ctx context.Context, key, localPath, contentType string) (int64, error)
	// Location names the bucket or root for log lines.
	Location() string
}

func storeLogger(logger *slog.Logger, backend string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("layer", "objectstore", "backend", backend)
}

func checkLocalSource(localPath string) (string, error) {
	normalized := filepath.Clean(strings.TrimSpace(localPath))
	info, err := os.Stat(normalized)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrLocalSourceFileNotFound, normalized)
		}
		return "", fmt.Errorf("stat local source file failed: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrLocalSourcePathNotRegularFile, normalized)
	}
	return normalized, nil
}

func normalizeObjectKey(key string) (string, error) {
	value := strings.Trim(strings.TrimSpace(strings.ReplaceAll(key, "\\", "/")), "/")
	if value == "" {
		return "", ErrObjectKeyRequired
	}
	return value, nil
}
