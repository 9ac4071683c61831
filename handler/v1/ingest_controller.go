package v1

import (
	"context"
	"log/slog"
	"net/http"

	"system_model_importer/service"

	"github.com/gin-gonic/gin"
)

type IngestController struct {
	ingestService *service.IngestService
	logger        *slog.Logger
}

func NewIngestController(ingestService *service.IngestService, logger *slog.Logger) *IngestController {
	return &IngestController{
		ingestService: ingestService,
		logger:        handlerLogger(logger),
	}
}

// TriggerIngest handles POST /v1/ingest. It runs one pass synchronously and
// answers 409 while another pass is running. The pass ignores client
// disconnects: once started, every file is attempted.
func (c *IngestController) TriggerIngest(ctx *gin.Context) {
	summary, err := c.ingestService.TryRun(context.WithoutCancel(ctx.Request.Context()))
	if err != nil {
		writeHTTPError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, summary)
}
