package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind tells the provider which side of an asymmetric retrieval a text is on.
type Kind string

const (
	KindQuery    Kind = "query"
	KindDocument Kind = "document"
)

// ParseKind maps the wire value to a Kind, defaulting to KindQuery.
func ParseKind(s string) Kind {
	if Kind(s) == KindDocument {
		return KindDocument
	}
	return KindQuery
}

const (
	DialectCompatible = "compatible"
	DialectDashScope  = "dashscope"
)

var (
	ErrEmptyText   = errors.New("embedding text is empty")
	ErrEmptyVector = errors.New("provider returned an empty embedding")
)

// Embedder turns one text into a dense vector. Implementations make a single
// attempt per call.
type Embedder interface {
	Embed(ctx context.Context, text string, kind Kind) ([]float32, error)
	Model() string
}

type Config struct {
	Dialect    string
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

func New(cfg Config) (Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-v4"
	}

	switch cfg.Dialect {
	case DialectCompatible:
		return newOpenAIEmbedder(cfg), nil
	case DialectDashScope:
		return newDashScopeEmbedder(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported embedding dialect: %q", cfg.Dialect)
	}
}
