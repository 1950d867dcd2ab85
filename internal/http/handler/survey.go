package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"loomsales.app/copilot/internal/http/dto"
	"loomsales.app/copilot/internal/service"
)

const surveySubmitted = "问卷提交成功！我们会尽快与您联系。"

type SurveyHandler struct {
	surveyService service.SurveyService
}

func NewSurveyHandler(surveyService service.SurveyService) *SurveyHandler {
	return &SurveyHandler{surveyService: surveyService}
}

func (h *SurveyHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
		return
	}

	survey, err := h.surveyService.Submit(ctx, req.ToModel())
	if err != nil {
		var missing *service.MissingFieldError
		if errors.As(err, &missing) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: missing.Error()})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "提交失败，请稍后再试"})
		return
	}

	c.JSON(http.StatusCreated, dto.SurveyResponse{
		Success: true,
		Message: surveySubmitted,
		ID:      survey.ID,
	})
}
