package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"system_model_importer/dao"
	"system_model_importer/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultModelVersion        = "1.0"
	DefaultArchitectureProfile = "default"
)

// ModelService is the catalog writer and the read side of the catalog.
type ModelService struct {
	modelDAO *dao.ModelDAO
	logger   *slog.Logger
}

func NewModelService(modelDAO *dao.ModelDAO, logger *slog.Logger) *ModelService {
	return &ModelService{
		modelDAO: modelDAO,
		logger:   serviceLogger(logger).With("service", "ModelService"),
	}
}

// RecordModel inserts one system model row in its own transaction and
// returns the generated id. Every error wraps ErrPersistenceFailed.
func (s *ModelService) RecordModel(ctx context.Context, name, version, architecture, storageKey string) (uuid.UUID, error) {
	if s.modelDAO == nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrPersistenceFailed, dao.ErrDBNotInitialized)
	}

	session, err := s.modelDAO.Session(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}

	model := &entity.Model{
		Name:                name,
		Version:             version,
		Architecture:        architecture,
		ArchitectureProfile: DefaultArchitectureProfile,
		StoragePath:         storageKey,
		Status:              entity.ModelStatusCompleted,
		IsSystem:            true,
	}

	// Transaction commits on nil and rolls back on error or panic.
	err = session.Transaction(func(tx *gorm.DB) error {
		return s.modelDAO.Create(tx, model)
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s: %w", ErrPersistenceFailed, name, err)
	}

	s.logger.Info("model recorded", "model", name, "model_id", model.ID, "storage_key", storageKey)
	return model.ID.UUID, nil
}

func (s *ModelService) GetModel(ctx context.Context, id uuid.UUID) (*entity.Model, error) {
	return s.modelDAO.FindByID(ctx, id)
}

// ListModels pages through the catalog. A storage_path filter short-cuts to
// the single row owning that key, or an empty page.
func (s *ModelService) ListModels(ctx context.Context, params entity.QueryParams) (entity.PageResult, error) {
	if status := strings.TrimSpace(params.Status); status != "" && !entity.ModelStatus(status).Valid() {
		return entity.PageResult{}, fmt.Errorf("%w: %s", entity.ErrInvalidModelStatus, status)
	}

	if storagePath := strings.TrimSpace(params.StoragePath); storagePath != "" {
		model, err := s.modelDAO.FindByStoragePath(ctx, storagePath)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.PageResult{Total: 0, List: []entity.Model{}}, nil
		}
		if err != nil {
			return entity.PageResult{}, err
		}
		return entity.PageResult{Total: 1, List: []entity.Model{*model}}, nil
	}

	models, total, err := s.modelDAO.FindAll(ctx, params)
	if err != nil {
		return entity.PageResult{}, err
	}
	return entity.PageResult{
		Total: total,
		List:  models,
	}, nil
}
