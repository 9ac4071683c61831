package v1_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"system_model_importer/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type modelPage struct {
	Total int64          `json:"total"`
	List  []entity.Model `json:"list"`
}

func TestModelAPI(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	yoloID, err := s.models.RecordModel(ctx, "yolov8_small", "1.0", "yolo", "system/a_yolov8_small.pt")
	require.NoError(t, err)
	_, err = s.models.RecordModel(ctx, "faster_rcnn_r50", "1.0", "faster_rcnn", "system/b_faster_rcnn_r50.pth")
	require.NoError(t, err)

	t.Run("Healthz", func(t *testing.T) {
		w := performRequest(s.router, http.MethodGet, "/healthz", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})

	t.Run("List Models", func(t *testing.T) {
		w := performRequest(s.router, http.MethodGet, "/v1/models?page=1&page_size=10", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var page modelPage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.EqualValues(t, 2, page.Total)
		assert.Len(t, page.List, 2)
	})

	t.Run("Filter Models", func(t *testing.T) {
		w := performRequest(s.router, http.MethodGet, "/v1/models?architecture=yolo&is_system=true", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var page modelPage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		require.EqualValues(t, 1, page.Total)
		assert.Equal(t, "yolov8_small", page.List[0].Name)
	})

	t.Run("Keyword Models", func(t *testing.T) {
		w := performRequest(s.router, http.MethodGet, "/v1/models?keyword=rcnn", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var page modelPage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		require.EqualValues(t, 1, page.Total)
		assert.Equal(t, "faster_rcnn", page.List[0].Architecture)
	})

	t.Run("Filter Models Invalid Status", func(t *testing.T) {
		w := performRequest(s.router, http.MethodGet, "/v1/models?status=archived", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Lookup Model By Storage Path", func(t *testing.T) {
		w := performRequest(s.router, http.MethodGet, "/v1/models?storage_path=system/a_yolov8_small.pt", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var page modelPage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		require.EqualValues(t, 1, page.Total)
		assert.Equal(t, yoloID, page.List[0].ID.UUID)

		w = performRequest(s.router, http.MethodGet, "/v1/models?storage_path=system/missing.pt", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Zero(t, page.Total)
	})

	t.Run("Get Model", func(t *testing.T) {
		w := performRequest(s.router, http.MethodGet, "/v1/models/"+yoloID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var model entity.Model
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &model))
		assert.Equal(t, yoloID, model.ID.UUID)
		assert.Equal(t, "system/a_yolov8_small.pt", model.StoragePath)
		assert.Equal(t, entity.ModelStatusCompleted, model.Status)
		assert.True(t, model.IsSystem)
	})

	t.Run("Get Model Invalid ID", func(t *testing.T) {
		w := performRequest(s.router, http.MethodGet, "/v1/models/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Get Model Not Found", func(t *testing.T) {
		w := performRequest(s.router, http.MethodGet, "/v1/models/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
