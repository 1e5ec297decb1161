package job

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshu-sajeev/issueflow/common"
	"github.com/joshu-sajeev/issueflow/internal/dto"
	"github.com/joshu-sajeev/issueflow/internal/generate"
	"github.com/joshu-sajeev/issueflow/middleware"
)

// EnhanceHandler serves the synchronous title/body generation used by the
// form flow before a job exists. This is the direct model call the rate
// limiter gates with the strict per-window limit.
type EnhanceHandler struct {
	gen generate.Generator
}

func NewEnhanceHandler(gen generate.Generator) *EnhanceHandler {
	return &EnhanceHandler{gen: gen}
}

func (h *EnhanceHandler) Enhance(c *gin.Context) {
	var req dto.EnhanceRequestDTO

	if !middleware.Bind(c, &req) {
		c.Abort()
		return
	}

	ctx := c.Request.Context()

	title := strings.TrimSpace(req.Title)
	if title == "" {
		derived, err := h.gen.Title(ctx, req.Prompt)
		if err != nil {
			c.Error(common.Errf(http.StatusBadGateway, "title generation failed"))
			c.Abort()
			return
		}
		title = derived
	}

	body, err := h.gen.Body(ctx, req.Prompt, title)
	if err != nil {
		body, _ = generate.Heuristic{}.Body(ctx, req.Prompt, title)
	}

	c.JSON(http.StatusOK, dto.EnhanceResponseDTO{Title: title, Body: body})
}
