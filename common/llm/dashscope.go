package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go"

	"loomsales.app/copilot/common/dashscope"
)

type dashscopeClient struct {
	api   openai.Client
	model string
}

func newDashScopeClient(cfg Config) *dashscopeClient {
	return &dashscopeClient{
		api:   dashscope.NewClient(cfg.BaseURL, cfg.APIKey, cfg.HTTPClient),
		model: cfg.Model,
	}
}

type generationRequest struct {
	Model      string               `json:"model"`
	Input      generationInput      `json:"input"`
	Parameters generationParameters `json:"parameters"`
}

type generationInput struct {
	Messages []generationMessage `json:"messages"`
}

type generationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type generationParameters struct {
	ResultFormat   string          `json:"result_format"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    *float64        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type generationResponse struct {
	Output struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
	} `json:"output"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
	RequestID string `json:"request_id"`
}

func (c *dashscopeClient) Complete(ctx context.Context, req Request) (*Response, error) {
	body := generationRequest{
		Model: c.model,
		Parameters: generationParameters{
			ResultFormat: "message",
			MaxTokens:    req.MaxTokens,
			Temperature:  req.Temperature,
		},
	}
	for _, m := range req.Messages {
		body.Input.Messages = append(body.Input.Messages, generationMessage{Role: m.Role, Content: m.Content})
	}
	// The native API has no schema mode; both JSON formats map to json_object.
	if req.Format == FormatJSONObject || req.Format == FormatJSONSchema {
		body.Parameters.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	start := time.Now()
	var resp generationResponse
	if err := c.api.Post(ctx, dashscope.GenerationPath, body, &resp); err != nil {
		return nil, fmt.Errorf("dashscope generation: %w", dashscope.WrapError(err))
	}

	slog.DebugContext(ctx, "llm chat completed",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.InputTokens,
		"completion_tokens", resp.Usage.OutputTokens,
		"provider_request_id", resp.RequestID)

	if len(resp.Output.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	total := resp.Usage.TotalTokens
	if total == 0 {
		total = resp.Usage.InputTokens + resp.Usage.OutputTokens
	}

	return &Response{
		Content: resp.Output.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      total,
		},
	}, nil
}

func (c *dashscopeClient) Model() string {
	return c.model
}
