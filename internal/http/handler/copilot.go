package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"loomsales.app/copilot/common/embedding"
	"loomsales.app/copilot/internal/copilot"
	"loomsales.app/copilot/internal/http/dto"
	"loomsales.app/copilot/internal/service"
)

type CopilotHandler struct {
	copilotService service.CopilotService
}

func NewCopilotHandler(copilotService service.CopilotService) *CopilotHandler {
	return &CopilotHandler{copilotService: copilotService}
}

func (h *CopilotHandler) Query(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CopilotQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
		return
	}

	resp, err := h.copilotService.Query(ctx, req.ToRequest())
	if err != nil {
		status, msg := copilotError(err)
		_ = c.Error(err)
		c.JSON(status, dto.ErrorResponse{Error: msg})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *CopilotHandler) Embed(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.EmbedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
		return
	}

	vector, err := h.copilotService.Embed(ctx, req.Text, embedding.ParseKind(req.Type))
	if err != nil {
		_ = c.Error(err)
		switch {
		case errors.Is(err, embedding.ErrEmptyText):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "text is required"})
		case errors.Is(err, copilot.ErrNotConfigured):
			c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "embedding is not configured"})
		default:
			c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "Embedding API failed"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.EmbedResponse{Embedding: vector})
}

func copilotError(err error) (int, string) {
	switch {
	case errors.Is(err, copilot.ErrInvalidRequest):
		return http.StatusBadRequest, "Query is required"
	case errors.Is(err, copilot.ErrNotConfigured):
		return http.StatusServiceUnavailable, "Missing configuration"
	case copilot.IsFatalStage(err):
		return http.StatusBadGateway, "AI service unavailable"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
