package service

import (
	"errors"
	"log/slog"
)

var (
	// ErrUploadFailed marks a per-file object store failure.
	ErrUploadFailed = errors.New("upload artifact failed")
	// ErrPersistenceFailed marks a per-file catalog insert failure.
	ErrPersistenceFailed = errors.New("persist model record failed")
	// ErrStartupFailed marks failures that abort a run before any file is processed.
	ErrStartupFailed = errors.New("ingestion startup failed")
)

func serviceLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default().With("layer", "service")
	}
	return logger.With("layer", "service")
}
