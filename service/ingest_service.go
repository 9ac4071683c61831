package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"system_model_importer/config"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ArtifactExtensions are the serialized weight file suffixes picked up by a scan.
var ArtifactExtensions = []string{".pt", ".pth"}

var ErrIngestInProgress = errors.New("ingestion already in progress")

type ArtifactUploader interface {
	Upload(ctx context.Context, filePath, modelName string) (string, error)
}

type ModelRecorder interface {
	RecordModel(ctx context.Context, name, version, architecture, storageKey string) (uuid.UUID, error)
}

type Artifact struct {
	FileName  string `json:"file_name"`
	Path      string `json:"path"`
	ModelName string `json:"model_name"`
}

type FileResult struct {
	FileName     string    `json:"file_name"`
	ModelName    string    `json:"model_name"`
	Architecture string    `json:"architecture,omitempty"`
	StorageKey   string    `json:"storage_key,omitempty"`
	ModelID      uuid.UUID `json:"model_id"`
	Error        string    `json:"error,omitempty"`
	Err          error     `json:"-"`
}

func (r FileResult) Succeeded() bool {
	return r.Err == nil
}

type IngestSummary struct {
	ModelsDir  string       `json:"models_dir"`
	Total      int          `json:"total"`
	Succeeded  int          `json:"succeeded"`
	Failed     int          `json:"failed"`
	Results    []FileResult `json:"results"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// IngestService walks the models directory and pushes every artifact through
// upload, classification and catalog insert. Files are independent: a failed
// file is logged and recorded, never retried, and never stops the batch.
type IngestService struct {
	ModelsDir string
	Workers   int

	uploader ArtifactUploader
	recorder ModelRecorder
	events   *EventPublisher
	logger   *slog.Logger

	running sync.Mutex
}

func NewIngestService(cfg config.IngestConfig, uploader ArtifactUploader, recorder ModelRecorder, events *EventPublisher, logger *slog.Logger) *IngestService {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	return &IngestService{
		ModelsDir: cfg.ModelsDir,
		Workers:   workers,
		uploader:  uploader,
		recorder:  recorder,
		events:    events,
		logger:    serviceLogger(logger).With("service", "IngestService"),
	}
}

func HasArtifactExtension(fileName string) bool {
	for _, ext := range ArtifactExtensions {
		if strings.HasSuffix(fileName, ext) {
			return true
		}
	}
	return false
}

// ScanArtifacts lists candidate artifacts in dir, in file name order.
// Sub-directories are skipped even when their name carries an artifact suffix.
func ScanArtifacts(dir string) ([]Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	artifacts := make([]Artifact, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !HasArtifactExtension(entry.Name()) {
			continue
		}
		artifacts = append(artifacts, Artifact{
			FileName:  entry.Name(),
			Path:      filepath.Join(dir, entry.Name()),
			ModelName: ModelNameFromFile(entry.Name()),
		})
	}
	return artifacts, nil
}

// TryRun is Run guarded against overlapping runs in the same process.
func (s *IngestService) TryRun(ctx context.Context) (IngestSummary, error) {
	if !s.running.TryLock() {
		return IngestSummary{}, ErrIngestInProgress
	}
	defer s.running.Unlock()
	return s.Run(ctx)
}

// Run processes every artifact once. The returned error is non-nil only when
// the directory itself cannot be listed; per-file failures land in the summary.
func (s *IngestService) Run(ctx context.Context) (IngestSummary, error) {
	summary := IngestSummary{
		ModelsDir: s.ModelsDir,
		StartedAt: time.Now(),
	}

	artifacts, err := ScanArtifacts(s.ModelsDir)
	if err != nil {
		return summary, fmt.Errorf("%w: list models dir %s: %w", ErrStartupFailed, s.ModelsDir, err)
	}
	s.logger.Info("ingestion started", "models_dir", s.ModelsDir, "candidates", len(artifacts), "workers", s.Workers)

	results := make([]FileResult, len(artifacts))
	if s.Workers <= 1 {
		for i, artifact := range artifacts {
			results[i] = s.processFile(ctx, artifact)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(s.Workers)
		for i, artifact := range artifacts {
			i, artifact := i, artifact
			g.Go(func() error {
				results[i] = s.processFile(ctx, artifact)
				return nil
			})
		}
		_ = g.Wait()
	}

	summary.Results = results
	summary.Total = len(results)
	for _, result := range results {
		if result.Succeeded() {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	summary.FinishedAt = time.Now()

	s.logger.Info(
		"ingestion finished",
		"models_dir", s.ModelsDir,
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"cost_ms", summary.FinishedAt.Sub(summary.StartedAt).Milliseconds(),
	)
	return summary, nil
}

func (s *IngestService) processFile(ctx context.Context, artifact Artifact) FileResult {
	logger := s.logger.With("file", artifact.FileName)
	result := FileResult{
		FileName:  artifact.FileName,
		ModelName: artifact.ModelName,
	}
	fail := func(err error) FileResult {
		result.Err = err
		result.Error = err.Error()
		return result
	}

	logger.Info("file in process")
	if err := ctx.Err(); err != nil {
		logger.Error("ingest file skipped", "error", err)
		return fail(err)
	}

	storageKey, err := s.uploader.Upload(ctx, artifact.Path, artifact.ModelName)
	if err != nil {
		logger.Error("ingest file failed", "stage", "upload", "error", err)
		return fail(err)
	}
	result.StorageKey = storageKey

	result.Architecture = ClassifyArchitecture(artifact.ModelName)

	modelID, err := s.recorder.RecordModel(ctx, artifact.ModelName, DefaultModelVersion, result.Architecture, storageKey)
	if err != nil {
		// The object stays in the store without a catalog row.
		logger.Error("ingest file failed", "stage", "catalog", "error", err)
		logger.Warn("orphaned object left in store", "storage_key", storageKey)
		return fail(err)
	}
	result.ModelID = modelID

	err = s.events.Publish(ctx, IngestEvent{
		ModelID:      modelID.String(),
		Name:         artifact.ModelName,
		Version:      DefaultModelVersion,
		Architecture: result.Architecture,
		StorageKey:   storageKey,
		IngestedAt:   time.Now().UTC(),
	})
	if err != nil {
		logger.Warn("publish ingest event failed", "model_id", modelID, "error", err)
	}

	logger.Info("file ingested", "model_id", modelID, "architecture", result.Architecture, "storage_key", storageKey)
	return result
}
