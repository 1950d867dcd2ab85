// Package app assembles the copilot pipeline from configuration. It is shared
// by the HTTP server and the operator CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"loomsales.app/copilot/common/embedding"
	"loomsales.app/copilot/common/llm"
	"loomsales.app/copilot/core/config"
	"loomsales.app/copilot/core/db"
	"loomsales.app/copilot/internal/copilot"
	"loomsales.app/copilot/internal/queue"
	"loomsales.app/copilot/internal/retrieval"
)

// eventStreamMaxLen bounds the query event stream.
const eventStreamMaxLen = 100_000

// Copilot is the assembled pipeline. Embedder and Events are nil when their
// backing service is not configured.
type Copilot struct {
	Orchestrator *copilot.Orchestrator
	Embedder     embedding.Embedder
	Events       queue.Producer
}

// BuildCopilot wires the LLM clients, embedder, searcher and event producer.
// Missing credentials leave the orchestrator unconfigured rather than failing;
// invalid settings (an unknown dialect or backend) are errors. conn and rdb
// may be nil.
func BuildCopilot(ctx context.Context, cfg config.Config, conn db.DBTX, rdb *redis.Client) (*Copilot, error) {
	var (
		deps   = copilot.Deps{ReasoningFormat: llm.ResponseFormat(cfg.LLM.ReasoningFormat)}
		result = &Copilot{}
	)

	if cfg.LLM.Enabled() {
		reasoning, err := newLLM(cfg.LLM, cfg.LLM.ReasoningModel)
		if err != nil {
			return nil, fmt.Errorf("reasoning llm: %w", err)
		}
		chat, err := newLLM(cfg.LLM, cfg.LLM.ChatModel)
		if err != nil {
			return nil, fmt.Errorf("chat llm: %w", err)
		}
		embedder, err := embedding.New(embedding.Config{
			Dialect: cfg.LLM.Dialect,
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.EmbedModel,
		})
		if err != nil {
			return nil, fmt.Errorf("embedder: %w", err)
		}
		if rdb != nil && cfg.Redis.EmbedCacheTTL > 0 {
			embedder = embedding.NewCachedEmbedder(embedder, rdb, cfg.Redis.EmbedCacheTTL)
		}

		deps.ReasoningLLM = reasoning
		deps.ChatLLM = chat
		deps.Embedder = embedder
		result.Embedder = embedder
	} else {
		slog.WarnContext(ctx, "QWEN_API_KEY not set, copilot queries will answer 503")
	}

	switch cfg.Search.Backend {
	case config.SearchBackendPostgres, config.SearchBackendTypesense:
	default:
		return nil, fmt.Errorf("unsupported search backend: %q", cfg.Search.Backend)
	}
	if searcher, err := retrieval.New(cfg.Search, conn); err != nil {
		slog.WarnContext(ctx, "search backend not configured", "backend", cfg.Search.Backend, "error", err)
	} else {
		deps.Searcher = searcher
	}

	if rdb != nil && cfg.Redis.EventStream != "" {
		result.Events = queue.NewRedisProducer(rdb, cfg.Redis.EventStream, eventStreamMaxLen)
	}

	result.Orchestrator = copilot.NewOrchestrator(cfg.Copilot, deps)

	slog.InfoContext(ctx, "copilot assembled",
		"configured", result.Orchestrator.Configured(),
		"dialect", cfg.LLM.Dialect,
		"search_backend", cfg.Search.Backend,
		"embed_cache", rdb != nil,
		"events", result.Events != nil)

	return result, nil
}

func newLLM(cfg config.LLMConfig, model string) (llm.Client, error) {
	return llm.New(llm.Config{
		Dialect: cfg.Dialect,
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   model,
	})
}

// ConnectRedis returns nil without error when Redis is not configured.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}
