package v1

import (
	"log/slog"
	"net/http"

	"system_model_importer/entity"
	"system_model_importer/service"

	"github.com/gin-gonic/gin"
)

type ModelController struct {
	modelService *service.ModelService
	logger       *slog.Logger
}

func NewModelController(modelService *service.ModelService, logger *slog.Logger) *ModelController {
	return &ModelController{
		modelService: modelService,
		logger:       handlerLogger(logger),
	}
}

// GetAllModels handles GET /v1/models
func (c *ModelController) GetAllModels(ctx *gin.Context) {
	var params entity.QueryParams
	if err := ctx.ShouldBindQuery(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := c.modelService.ListModels(ctx.Request.Context(), params)
	if err != nil {
		writeHTTPError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// GetModel handles GET /v1/models/:id
func (c *ModelController) GetModel(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		writeHTTPError(ctx, c.logger, err)
		return
	}

	model, err := c.modelService.GetModel(ctx.Request.Context(), id)
	if err != nil {
		writeHTTPError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, model)
}
