package v1

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"system_model_importer/dao"
	"system_model_importer/entity"
	"system_model_importer/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func handlerLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default().With("layer", "handler")
	}
	return logger.With("layer", "handler")
}

func parseIDParam(ctx *gin.Context, paramName string) (uuid.UUID, error) {
	rawID := ctx.Param(paramName)
	id, err := uuid.Parse(rawID)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: %s", dao.ErrInvalidID, rawID)
	}
	return id, nil
}

func writeHTTPError(ctx *gin.Context, logger *slog.Logger, err error) {
	logger = logger.With(
		"method", ctx.Request.Method,
		"path", ctx.FullPath(),
	)

	switch {
	case errors.Is(err, dao.ErrInvalidID), errors.Is(err, dao.ErrNilEntity), errors.Is(err, entity.ErrInvalidModelStatus):
		logger.Warn("request failed", "status", http.StatusBadRequest, "error", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrIngestInProgress):
		logger.Warn("request failed", "status", http.StatusConflict, "error", err)
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		logger.Warn("request failed", "status", http.StatusNotFound, "error", err)
		ctx.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	default:
		logger.Error("request failed", "status", http.StatusInternalServerError, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
