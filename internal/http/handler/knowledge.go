package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"loomsales.app/copilot/internal/http/dto"
	"loomsales.app/copilot/internal/service"
	"loomsales.app/copilot/internal/store"
)

type KnowledgeHandler struct {
	knowledgeService service.KnowledgeService
}

func NewKnowledgeHandler(knowledgeService service.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{knowledgeService: knowledgeService}
}

func (h *KnowledgeHandler) List(c *gin.Context) {
	entries, err := h.knowledgeService.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list knowledge"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *KnowledgeHandler) Delete(c *gin.Context) {
	err := h.knowledgeService.Delete(c.Request.Context(), c.Query("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
	case errors.Is(err, service.ErrKnowledgeIDRequired), errors.Is(err, service.ErrInvalidKnowledgeID):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "knowledge entry not found"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete"})
	}
}
