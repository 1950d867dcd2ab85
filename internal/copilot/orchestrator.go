package copilot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"loomsales.app/copilot/common/embedding"
	"loomsales.app/copilot/common/id"
	"loomsales.app/copilot/common/llm"
	"loomsales.app/copilot/common/logger"
	"loomsales.app/copilot/core/config"
	"loomsales.app/copilot/internal/metrics"
	"loomsales.app/copilot/internal/model"
	"loomsales.app/copilot/internal/retrieval"
)

const defaultMatchCount = 5

// Deps are the external collaborators of the pipeline. Any nil dependency
// leaves the orchestrator unconfigured.
type Deps struct {
	ReasoningLLM    llm.Client // cheap model: reasoning and history summaries
	ChatLLM         llm.Client // strong model: final answers
	Embedder        embedding.Embedder
	Searcher        retrieval.Searcher
	ReasoningFormat llm.ResponseFormat
}

// Orchestrator runs Reasoning → Memory → Embedding → Retrieval →
// Confidence → Generation → Assembly for one query. It holds no per-request
// state and is safe for concurrent use.
type Orchestrator struct {
	cfg       config.CopilotConfig
	reasoner  *Reasoner
	memory    *MemoryManager
	generator *Generator
	embedder  embedding.Embedder
	searcher  retrieval.Searcher
}

func NewOrchestrator(cfg config.CopilotConfig, deps Deps) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		embedder: deps.Embedder,
		searcher: deps.Searcher,
	}
	if deps.ReasoningLLM != nil {
		o.reasoner = NewReasoner(deps.ReasoningLLM, deps.ReasoningFormat)
		o.memory = NewMemoryManager(deps.ReasoningLLM)
	}
	if deps.ChatLLM != nil {
		o.generator = NewGenerator(deps.ChatLLM)
	}
	if o.cfg.MatchCount <= 0 {
		o.cfg.MatchCount = defaultMatchCount
	}
	return o
}

// Configured reports whether every collaborator is present.
func (o *Orchestrator) Configured() bool {
	return o != nil && o.reasoner != nil && o.generator != nil && o.embedder != nil && o.searcher != nil
}

// Query answers one sales question. Errors are *StageError values wrapping
// ErrInvalidRequest, ErrNotConfigured, ErrEmbeddingFailed,
// ErrGenerationFailed or ErrInternal. No partial response is returned.
func (o *Orchestrator) Query(ctx context.Context, req Request) (resp *Response, err error) {
	if strings.TrimSpace(req.Query) == "" {
		metrics.CopilotRequestsFailed.WithLabelValues(failureReason(ErrInvalidRequest)).Inc()
		return nil, newStageError(StageValidation, ErrInvalidRequest, nil)
	}
	if !o.Configured() {
		metrics.CopilotRequestsFailed.WithLabelValues(failureReason(ErrNotConfigured)).Inc()
		return nil, newStageError(StageValidation, ErrNotConfigured, nil)
	}

	requestID := id.New()
	ctx = logger.WithLogFields(ctx, logger.LogFields{RequestID: &requestID, Component: "copilot.orchestrator"})

	sc := logger.StartSpan(ctx, "copilot.query")
	defer sc.End()
	ctx = sc.Context()
	sc.SetAttributes(attribute.Int64("copilot.request_id", requestID))

	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, panicError(ctx, r)
		}
		if err != nil {
			sc.RecordError(err)
			metrics.CopilotRequestsFailed.WithLabelValues(failureReason(err)).Inc()
		}
	}()

	resp, err = o.run(ctx, req.Query, req)
	if resp != nil {
		resp.RequestID = requestID
	}
	return resp, err
}

func (o *Orchestrator) run(ctx context.Context, query string, req Request) (*Response, error) {
	start := time.Now()
	crmSummary := model.FormatCrmContext(req.CrmContexts)

	reasoning, _ := runStage(ctx, StageReasoning, o.cfg.ReasoningTimeout, func(ctx context.Context) (ReasoningOutcome, error) {
		return o.reasoner.Reason(ctx, query, crmSummary), nil
	})
	intent := reasoning.Result.Intent
	retrievalQuery := reasoning.Result.RetrievalQuery
	ctx = logger.WithLogFields(ctx, logger.LogFields{Intent: logger.Ptr(string(intent))})

	// Memory only depends on the intent, so it runs alongside embedding and
	// retrieval. An embedding failure cancels it.
	var (
		memory  = noMemory()
		records []model.KnowledgeRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	if len(req.ConversationHistory) > 0 {
		goSafe(g, gctx, func() error {
			memory, _ = runStage(gctx, StageMemory, o.cfg.MemoryTimeout, func(ctx context.Context) (MemoryContext, error) {
				return o.memory.Process(ctx, query, intent, req.ConversationHistory), nil
			})
			return nil
		})
	}
	goSafe(g, gctx, func() error {
		vector, err := runStage(gctx, StageEmbedding, o.cfg.EmbeddingTimeout, func(ctx context.Context) ([]float32, error) {
			return o.embedder.Embed(ctx, retrievalQuery, embedding.KindQuery)
		})
		if err != nil {
			slog.ErrorContext(logger.WithLogFields(gctx, logger.LogFields{Stage: StageEmbedding}),
				"embedding failed, aborting query",
				"model", o.embedder.Model(),
				"error", err)
			return newStageError(StageEmbedding, ErrEmbeddingFailed, err)
		}

		records, _ = runStage(gctx, StageRetrieval, o.cfg.RetrievalTimeout, func(ctx context.Context) ([]model.KnowledgeRecord, error) {
			return o.searcher.Search(ctx, retrievalQuery, vector, o.cfg.MatchCount), nil
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	confidence := ScoreConfidence(records, o.cfg.ConfidenceThreshold)
	knowledge := BuildContext(records, confidence)
	if knowledge == NoReferenceSentinel {
		metrics.StageDegraded.WithLabelValues(StageRetrieval).Inc()
	}

	slog.InfoContext(ctx, "retrieval scored",
		"results", len(records),
		"top_score", topScore(records),
		"threshold", o.cfg.ConfidenceThreshold,
		"confidence", confidence)

	answer, err := runStage(ctx, StageGeneration, o.cfg.GenerationTimeout, func(ctx context.Context) (*GenerateOutput, error) {
		return o.generator.Generate(ctx, GenerateInput{
			Intent:     intent,
			Context:    knowledge,
			CrmSummary: crmSummary,
			Memory:     memory,
			Query:      query,
		})
	})
	if err != nil {
		slog.ErrorContext(logger.WithLogFields(ctx, logger.LogFields{Stage: StageGeneration}),
			"generation failed",
			"error", err)
		return nil, newStageError(StageGeneration, ErrGenerationFailed, err)
	}

	resp := assemble(reasoning, memory, records, confidence, answer)

	metrics.CopilotRequests.WithLabelValues(string(intent), string(confidence)).Inc()
	slog.InfoContext(ctx, "copilot query answered",
		"confidence", confidence,
		"images", len(resp.Images),
		"memory_strategy", memory.Strategy,
		"total_tokens", resp.Usage.TotalTokens,
		"latency_ms", time.Since(start).Milliseconds())

	return resp, nil
}

func assemble(reasoning ReasoningOutcome, memory MemoryContext, records []model.KnowledgeRecord, confidence Confidence, answer *GenerateOutput) *Response {
	generation := answer.Usage
	usage := UsageSummary{
		Reasoning:   reasoning.Usage,
		Generation:  &generation,
		Memory:      memory.Usage(),
		TotalTokens: generation.TotalTokens,
	}
	if reasoning.Usage != nil {
		usage.TotalTokens += reasoning.Usage.TotalTokens
	}

	return &Response{
		Message:    answer.Text,
		Images:     CollectImages(records),
		Intent:     reasoning.Result.Intent,
		Confidence: confidence,
		Usage:      usage,
		Memory:     memory.Usage(),
		Module:     reasoning.Result.Module,
		TopScore:   topScore(records),
	}
}

// runStage wraps fn in a span, the stage's log fields, an optional timeout
// and the stage latency histogram.
func runStage[T any](ctx context.Context, stage string, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	sc := logger.StartSpan(ctx, "copilot."+stage)
	defer sc.End()

	stageCtx := logger.WithLogFields(sc.Context(), logger.LogFields{Stage: stage})
	if timeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(stageCtx, timeout)
		defer cancel()
	}

	defer metrics.ObserveStage(stage, time.Now())

	v, err := fn(stageCtx)
	if err != nil {
		sc.RecordError(err)
	}
	return v, err
}

// goSafe runs fn on g, converting a panic into an ErrInternal stage error
// so it reaches Wait instead of crashing the process.
func goSafe(g *errgroup.Group, ctx context.Context, fn func() error) {
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = panicError(ctx, r)
			}
		}()
		return fn()
	})
}

func panicError(ctx context.Context, r any) error {
	slog.ErrorContext(ctx, "copilot pipeline panicked",
		"panic", r,
		"stack", string(debug.Stack()))
	return newStageError(StagePipeline, ErrInternal, fmt.Errorf("panic: %v", r))
}

func topScore(records []model.KnowledgeRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	return records[0].Score
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrEmbeddingFailed):
		return "embedding_failed"
	case errors.Is(err, ErrGenerationFailed):
		return "generation_failed"
	default:
		return "internal"
	}
}
