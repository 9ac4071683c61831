package service

import (
	"context"
	"testing"

	"system_model_importer/dao"
	"system_model_importer/entity"
	"system_model_importer/infrastructure/db"
	"system_model_importer/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModelService(t *testing.T) *ModelService {
	t.Helper()
	return NewModelService(dao.NewModelDAO(testutil.NewSQLiteCatalog(t), nil), nil)
}

func TestModelServiceRecordModelDefaults(t *testing.T) {
	svc := newTestModelService(t)

	id, err := svc.RecordModel(context.Background(), "yolov8_small", DefaultModelVersion, ArchitectureYOLO, "system/k_yolov8_small.pt")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	got, err := svc.GetModel(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "yolov8_small", got.Name)
	assert.Equal(t, "1.0", got.Version)
	assert.Equal(t, ArchitectureYOLO, got.Architecture)
	assert.Equal(t, "default", got.ArchitectureProfile)
	assert.Equal(t, entity.ModelStatusCompleted, got.Status)
	assert.True(t, got.IsSystem)
	assert.Nil(t, got.OwnerID)
	assert.Nil(t, got.BaseModelID)
	assert.Nil(t, got.DatasetID)
	assert.Equal(t, "system/k_yolov8_small.pt", got.StoragePath)
}

func TestModelServiceRecordModelDistinctIDs(t *testing.T) {
	svc := newTestModelService(t)

	first, err := svc.RecordModel(context.Background(), "m", DefaultModelVersion, ArchitectureUnknown, "system/1_m.pt")
	require.NoError(t, err)
	second, err := svc.RecordModel(context.Background(), "m", DefaultModelVersion, ArchitectureUnknown, "system/2_m.pt")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestModelServiceRecordModelConstraintViolation(t *testing.T) {
	svc := newTestModelService(t)

	_, err := svc.RecordModel(context.Background(), "m", DefaultModelVersion, ArchitectureUnknown, "system/dup.pt")
	require.NoError(t, err)

	id, err := svc.RecordModel(context.Background(), "m", DefaultModelVersion, ArchitectureUnknown, "system/dup.pt")
	assert.ErrorIs(t, err, ErrPersistenceFailed)
	assert.Equal(t, uuid.Nil, id)

	page, err := svc.ListModels(context.Background(), entity.QueryParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total, "failed insert must not leave a row behind")
}

func TestModelServiceRecordModelClosedCatalog(t *testing.T) {
	conn := testutil.NewSQLiteCatalog(t)
	svc := NewModelService(dao.NewModelDAO(conn, nil), nil)
	require.NoError(t, db.Close(conn))

	_, err := svc.RecordModel(context.Background(), "m", DefaultModelVersion, ArchitectureUnknown, "system/x.pt")
	assert.ErrorIs(t, err, ErrPersistenceFailed)

	_, err = NewModelService(nil, nil).RecordModel(context.Background(), "m", "1.0", "unknown", "k")
	assert.ErrorIs(t, err, dao.ErrDBNotInitialized)
}

func TestModelServiceListModelsRejectsUnknownStatus(t *testing.T) {
	svc := newTestModelService(t)

	_, err := svc.ListModels(context.Background(), entity.QueryParams{Status: "archived"})
	assert.ErrorIs(t, err, entity.ErrInvalidModelStatus)

	_, err = svc.ListModels(context.Background(), entity.QueryParams{Status: string(entity.ModelStatusCompleted)})
	assert.NoError(t, err)
}

func TestModelServiceListModelsByStoragePath(t *testing.T) {
	svc := newTestModelService(t)
	ctx := context.Background()

	id, err := svc.RecordModel(ctx, "yolov8_small", DefaultModelVersion, ArchitectureYOLO, "system/a_yolov8_small.pt")
	require.NoError(t, err)
	_, err = svc.RecordModel(ctx, "other", DefaultModelVersion, ArchitectureUnknown, "system/b_other.pt")
	require.NoError(t, err)

	page, err := svc.ListModels(ctx, entity.QueryParams{StoragePath: "system/a_yolov8_small.pt"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	models := page.List.([]entity.Model)
	require.Len(t, models, 1)
	assert.Equal(t, id, models[0].ID.UUID)

	page, err = svc.ListModels(ctx, entity.QueryParams{StoragePath: "system/missing.pt"})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Empty(t, page.List)
}
