package router

import (
	"log/slog"
	"net/http"

	v1 "system_model_importer/handler/v1"
	"system_model_importer/service"

	"github.com/gin-gonic/gin"
)

func SetupRouter(modelService *service.ModelService, ingestService *service.IngestService, logger *slog.Logger) *gin.Engine {
	modelController := v1.NewModelController(modelService, logger)
	ingestController := v1.NewIngestController(ingestService, logger)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1Group := r.Group("/v1")
	{
		models := v1Group.Group("/models")
		{
			models.GET("", modelController.GetAllModels)
			models.GET("/:id", modelController.GetModel)
		}

		v1Group.POST("/ingest", ingestController.TriggerIngest)
	}

	return r
}
