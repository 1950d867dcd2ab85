package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"loomsales.app/copilot/common/embedding"
	"loomsales.app/copilot/internal/copilot"
	"loomsales.app/copilot/internal/queue"
)

// Pipeline is the query surface of copilot.Orchestrator.
type Pipeline interface {
	Query(ctx context.Context, req copilot.Request) (*copilot.Response, error)
}

type CopilotService interface {
	Query(ctx context.Context, req copilot.Request) (*copilot.Response, error)
	Embed(ctx context.Context, text string, kind embedding.Kind) ([]float32, error)
}

type copilotService struct {
	pipeline Pipeline
	embedder embedding.Embedder
	events   queue.Producer
}

// NewCopilotService wires the pipeline. embedder and events may be nil;
// without events no query events are published.
func NewCopilotService(pipeline Pipeline, embedder embedding.Embedder, events queue.Producer) CopilotService {
	return &copilotService{
		pipeline: pipeline,
		embedder: embedder,
		events:   events,
	}
}

func (s *copilotService) Query(ctx context.Context, req copilot.Request) (*copilot.Response, error) {
	start := time.Now()
	resp, err := s.pipeline.Query(ctx, req)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, resp, time.Since(start))
	return resp, nil
}

// publish failures are logged and never fail the query.
func (s *copilotService) publish(ctx context.Context, resp *copilot.Response, latency time.Duration) {
	if s.events == nil {
		return
	}

	event := queue.QueryEvent{
		RequestID:   resp.RequestID,
		Intent:      string(resp.Intent),
		Module:      resp.Module,
		Confidence:  string(resp.Confidence),
		TopScore:    resp.TopScore,
		TotalTokens: int64(resp.Usage.TotalTokens),
		LatencyMs:   latency.Milliseconds(),
	}
	if resp.Memory != nil {
		event.MemorySource = resp.Memory.Source
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		event.TraceID = sc.TraceID().String()
	}

	if err := s.events.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish query event",
			"error", err,
			"request_id", resp.RequestID)
	}
}

func (s *copilotService) Embed(ctx context.Context, text string, kind embedding.Kind) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, embedding.ErrEmptyText
	}
	if s.embedder == nil {
		return nil, copilot.ErrNotConfigured
	}

	vector, err := s.embedder.Embed(ctx, text, kind)
	if err != nil {
		slog.ErrorContext(ctx, "embedding failed", "error", err, "model", s.embedder.Model())
		return nil, fmt.Errorf("%w: %w", copilot.ErrEmbeddingFailed, err)
	}
	return vector, nil
}
