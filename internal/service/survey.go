package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"loomsales.app/copilot/common/id"
	"loomsales.app/copilot/internal/model"
	"loomsales.app/copilot/internal/store"
)

// MissingFieldError reports a required survey field left blank. Field is
// the form's field name.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "缺少必填字段: " + e.Field
}

type SurveyService interface {
	Submit(ctx context.Context, survey *model.Survey) (*model.Survey, error)
}

type surveyService struct {
	surveys store.SurveyStore
}

func NewSurveyService(surveys store.SurveyStore) SurveyService {
	return &surveyService{surveys: surveys}
}

func (s *surveyService) Submit(ctx context.Context, survey *model.Survey) (*model.Survey, error) {
	required := []struct {
		field string
		value string
	}{
		{"companyName", survey.CompanyName},
		{"contactName", survey.ContactName},
		{"contactPhone", survey.ContactPhone},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, &MissingFieldError{Field: r.field}
		}
	}

	survey.ID = id.New()
	if err := s.surveys.Create(ctx, survey); err != nil {
		slog.ErrorContext(ctx, "failed to store survey",
			"error", err,
			"company", survey.CompanyName)
		return nil, fmt.Errorf("creating survey: %w", err)
	}

	slog.InfoContext(ctx, "survey submitted", "survey_id", survey.ID, "company", survey.CompanyName)
	return survey, nil
}
