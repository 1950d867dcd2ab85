package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openaiEmbedder struct {
	client openai.Client
	model  string
}

func newOpenAIEmbedder(cfg Config) *openaiEmbedder {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	return &openaiEmbedder{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

// Embed calls /embeddings. The compatible endpoint has no text_type
// parameter, so kind does not change the request.
func (e *openaiEmbedder) Embed(ctx context.Context, text string, kind Kind) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	start := time.Now()
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, ErrEmptyVector
	}

	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}

	slog.DebugContext(ctx, "embedding completed",
		"model", e.model,
		"kind", kind,
		"dimensions", len(vec),
		"duration_ms", time.Since(start).Milliseconds())

	return vec, nil
}

func (e *openaiEmbedder) Model() string {
	return e.model
}
