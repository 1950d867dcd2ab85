package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"

	"loomsales.app/copilot/common/dashscope"
)

type dashscopeEmbedder struct {
	api   openai.Client
	model string
}

func newDashScopeEmbedder(cfg Config) *dashscopeEmbedder {
	return &dashscopeEmbedder{
		api:   dashscope.NewClient(cfg.BaseURL, cfg.APIKey, cfg.HTTPClient),
		model: cfg.Model,
	}
}

type embeddingRequest struct {
	Model      string              `json:"model"`
	Input      embeddingInput      `json:"input"`
	Parameters embeddingParameters `json:"parameters"`
}

type embeddingInput struct {
	Texts []string `json:"texts"`
}

type embeddingParameters struct {
	TextType string `json:"text_type"`
}

type embeddingResponse struct {
	Output struct {
		Embeddings []struct {
			TextIndex int       `json:"text_index"`
			Embedding []float32 `json:"embedding"`
		} `json:"embeddings"`
	} `json:"output"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	RequestID string `json:"request_id"`
}

func (e *dashscopeEmbedder) Embed(ctx context.Context, text string, kind Kind) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	body := embeddingRequest{
		Model:      e.model,
		Input:      embeddingInput{Texts: []string{text}},
		Parameters: embeddingParameters{TextType: string(kind)},
	}

	start := time.Now()
	var resp embeddingResponse
	if err := e.api.Post(ctx, dashscope.EmbeddingPath, body, &resp); err != nil {
		return nil, fmt.Errorf("dashscope embeddings: %w", dashscope.WrapError(err))
	}

	if len(resp.Output.Embeddings) == 0 || len(resp.Output.Embeddings[0].Embedding) == 0 {
		return nil, ErrEmptyVector
	}
	vec := resp.Output.Embeddings[0].Embedding

	slog.DebugContext(ctx, "embedding completed",
		"model", e.model,
		"kind", kind,
		"dimensions", len(vec),
		"tokens", resp.Usage.TotalTokens,
		"duration_ms", time.Since(start).Milliseconds())

	return vec, nil
}

func (e *dashscopeEmbedder) Model() string {
	return e.model
}
