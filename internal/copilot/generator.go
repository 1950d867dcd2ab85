package copilot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"loomsales.app/copilot/common/llm"
	"loomsales.app/copilot/common/logger"
	"loomsales.app/copilot/internal/metrics"
)

type GenerateInput struct {
	Intent     Intent
	Context    string
	CrmSummary string
	Memory     MemoryContext
	Query      string
}

type GenerateOutput struct {
	Text  string
	Usage llm.Usage
}

// Generator writes the final answer with the strong chat model.
type Generator struct {
	llm llm.Client
}

func NewGenerator(client llm.Client) *Generator {
	return &Generator{llm: client}
}

// Generate returns the provider error unchanged; generation has no fallback.
func (g *Generator) Generate(ctx context.Context, in GenerateInput) (*GenerateOutput, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Stage: StageGeneration, Component: "copilot.generator"})

	systemPrompt := BuildSystemPrompt(in.Intent, in.Context, in.CrmSummary)
	messages := BuildMessages(systemPrompt, in.Memory, in.Query)

	start := time.Now()
	resp, err := g.llm.Complete(ctx, llm.Request{Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	metrics.TokensUsed.WithLabelValues(StageGeneration).Add(float64(resp.Usage.TotalTokens))

	slog.InfoContext(ctx, "answer generated",
		"model", g.llm.Model(),
		"intent", in.Intent,
		"messages", len(messages),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"latency_ms", time.Since(start).Milliseconds())

	return &GenerateOutput{Text: resp.Content, Usage: resp.Usage}, nil
}
