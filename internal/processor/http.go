package processor

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshu-sajeev/issueflow/common"
	"github.com/joshu-sajeev/issueflow/internal/dto"
)

// Runner is the slice of the processor the trigger endpoint needs.
type Runner interface {
	ProcessPendingJobs(ctx context.Context, batchSize int) (int, error)
}

// TriggerHandler exposes the processor over HTTP for the external scheduler
// and manual invocation. It performs no retry of its own: a failed run leaves
// the remaining pending jobs for the next scheduled invocation.
type TriggerHandler struct {
	runner    Runner
	batchSize int
}

func NewTriggerHandler(runner Runner, batchSize int) *TriggerHandler {
	return &TriggerHandler{runner: runner, batchSize: batchSize}
}

func (h *TriggerHandler) Trigger(c *gin.Context) {
	count, err := h.runner.ProcessPendingJobs(c.Request.Context(), h.batchSize)
	if err != nil {
		c.Error(common.Errf(http.StatusInternalServerError, "processing run failed"))
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, dto.TriggerResponseDTO{Success: true, ProcessedCount: count})
}
