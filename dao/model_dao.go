package dao

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"system_model_importer/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ModelDAO struct {
	DB     *gorm.DB
	logger *slog.Logger
}

func NewModelDAO(db *gorm.DB, logger *slog.Logger) *ModelDAO {
	return &ModelDAO{
		DB:     db,
		logger: daoLogger(logger),
	}
}

// Session returns a fresh gorm session bound to ctx. Each call gets its own
// statement state, so concurrent callers never share builder state.
func (d *ModelDAO) Session(ctx context.Context) (*gorm.DB, error) {
	dbConn, err := withContext(d.DB, ctx)
	if err != nil {
		return nil, err
	}
	return dbConn.Session(&gorm.Session{}), nil
}

// Create inserts model inside tx. The caller owns the transaction.
func (d *ModelDAO) Create(tx *gorm.DB, model *entity.Model) error {
	if model == nil {
		return ErrNilEntity
	}
	if tx == nil {
		return ErrDBNotInitialized
	}
	return tx.Create(model).Error
}

func (d *ModelDAO) FindByID(ctx context.Context, id uuid.UUID) (*entity.Model, error) {
	if id == uuid.Nil {
		return nil, ErrInvalidID
	}

	dbConn, err := withContext(d.DB, ctx)
	if err != nil {
		return nil, fmt.Errorf("find model by id failed: %w", err)
	}

	var model entity.Model
	if err := dbConn.Where("id = ?", id).First(&model).Error; err != nil {
		return nil, err
	}
	return &model, nil
}

func (d *ModelDAO) FindByStoragePath(ctx context.Context, storagePath string) (*entity.Model, error) {
	path := strings.TrimSpace(storagePath)
	if path == "" {
		return nil, ErrInvalidID
	}

	dbConn, err := withContext(d.DB, ctx)
	if err != nil {
		return nil, fmt.Errorf("find model by storage path failed: %w", err)
	}

	var model entity.Model
	if err := dbConn.Where("minio_model_path = ?", path).First(&model).Error; err != nil {
		return nil, err
	}
	return &model, nil
}

func (d *ModelDAO) FindAll(ctx context.Context, params entity.QueryParams) ([]entity.Model, int64, error) {
	var models []entity.Model
	var total int64

	dbConn, err := withContext(d.DB, ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("find models failed: %w", err)
	}

	dbConn = dbConn.Model(&entity.Model{})

	// 1. fuzzy match on name
	if keyword := strings.TrimSpace(params.Keyword); keyword != "" {
		dbConn = dbConn.Where("name LIKE ?", "%"+keyword+"%")
	}

	// 2. exact filters
	if name := strings.TrimSpace(params.Name); name != "" {
		dbConn = dbConn.Where("name = ?", name)
	}
	if architecture := strings.TrimSpace(params.Architecture); architecture != "" {
		dbConn = dbConn.Where("architecture = ?", architecture)
	}
	if status := strings.TrimSpace(params.Status); status != "" {
		dbConn = dbConn.Where("status = ?", status)
	}
	if version := strings.TrimSpace(params.Version); version != "" {
		dbConn = dbConn.Where("version = ?", version)
	}
	if params.IsSystem != nil {
		dbConn = dbConn.Where("is_system = ?", *params.IsSystem)
	}

	// 3. total
	if err := dbConn.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count models failed: %w", err)
	}

	// 4. page
	offset, limit := pagination(params)
	err = dbConn.Order("created_at DESC").Order("name ASC").Offset(offset).Limit(limit).Find(&models).Error
	if err != nil {
		return nil, 0, fmt.Errorf("query models failed: %w", err)
	}

	d.logger.Debug("models listed", "total", total, "offset", offset, "limit", limit)
	return models, total, nil
}
