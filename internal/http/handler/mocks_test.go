package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"loomsales.app/copilot/common/embedding"
	"loomsales.app/copilot/internal/copilot"
	"loomsales.app/copilot/internal/model"
)

type mockCopilotService struct {
	queryFn func(ctx context.Context, req copilot.Request) (*copilot.Response, error)
	embedFn func(ctx context.Context, text string, kind embedding.Kind) ([]float32, error)
}

func (m *mockCopilotService) Query(ctx context.Context, req copilot.Request) (*copilot.Response, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, req)
	}
	return nil, nil
}

func (m *mockCopilotService) Embed(ctx context.Context, text string, kind embedding.Kind) ([]float32, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text, kind)
	}
	return nil, nil
}

type mockCrmService struct {
	searchFn func(ctx context.Context, q string) ([]model.CrmContextItem, error)
}

func (m *mockCrmService) Search(ctx context.Context, q string) ([]model.CrmContextItem, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return []model.CrmContextItem{}, nil
}

type mockSurveyService struct {
	submitFn func(ctx context.Context, survey *model.Survey) (*model.Survey, error)
}

func (m *mockSurveyService) Submit(ctx context.Context, survey *model.Survey) (*model.Survey, error) {
	if m.submitFn != nil {
		return m.submitFn(ctx, survey)
	}
	return survey, nil
}

type mockKnowledgeService struct {
	listFn   func(ctx context.Context) ([]model.KnowledgeEntry, error)
	deleteFn func(ctx context.Context, rawID string) error
}

func (m *mockKnowledgeService) List(ctx context.Context) ([]model.KnowledgeEntry, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []model.KnowledgeEntry{}, nil
}

func (m *mockKnowledgeService) Delete(ctx context.Context, rawID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, rawID)
	}
	return nil
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}

