package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"loomsales.app/copilot/internal/http/dto"
	"loomsales.app/copilot/internal/service"
)

type CrmHandler struct {
	crmService service.CrmService
}

func NewCrmHandler(crmService service.CrmService) *CrmHandler {
	return &CrmHandler{crmService: crmService}
}

func (h *CrmHandler) Search(c *gin.Context) {
	results, err := h.crmService.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, dto.CrmSearchResponse{Results: results})
}
