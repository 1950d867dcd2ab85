// Package retrieval queries the hybrid (lexical + vector) ranker that holds
// the product knowledge base. Ranking happens server-side; this package only
// maps the ranked hits into model.KnowledgeRecord.
package retrieval

import (
	"context"
	"fmt"
	"time"

	"loomsales.app/copilot/core/config"
	"loomsales.app/copilot/core/db"
	"loomsales.app/copilot/internal/model"
)

// Searcher never returns an error: failures are logged and yield no records.
type Searcher interface {
	Search(ctx context.Context, queryText string, queryVector []float32, matchCount int) []model.KnowledgeRecord
}

// New builds the Searcher for cfg.Backend. conn is required for the
// postgres backend and ignored otherwise.
func New(cfg config.SearchConfig, conn db.DBTX) (Searcher, error) {
	switch cfg.Backend {
	case config.SearchBackendPostgres:
		if conn == nil {
			return nil, fmt.Errorf("postgres search backend requires a database connection")
		}
		return NewPostgresSearcher(conn), nil
	case config.SearchBackendTypesense:
		if cfg.TypesenseURL == "" || cfg.TypesenseAPIKey == "" {
			return nil, fmt.Errorf("typesense search backend requires TYPESENSE_URL and TYPESENSE_API_KEY")
		}
		return NewTypesenseSearcher(TypesenseConfig{
			URL:        cfg.TypesenseURL,
			APIKey:     cfg.TypesenseAPIKey,
			Collection: cfg.Collection,
			Timeout:    10 * time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported search backend: %q", cfg.Backend)
	}
}
