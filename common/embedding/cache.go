package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "copilot:embedding:"

// CachedEmbedder memoizes another Embedder in Redis. Cache failures are
// logged and never fail an embedding.
type CachedEmbedder struct {
	next  Embedder
	redis redis.Cmdable
	ttl   time.Duration
}

func NewCachedEmbedder(next Embedder, rdb redis.Cmdable, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{next: next, redis: rdb, ttl: ttl}
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string, kind Kind) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	key := c.key(text, kind)

	raw, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var vec []float32
		if jsonErr := json.Unmarshal(raw, &vec); jsonErr == nil && len(vec) > 0 {
			slog.DebugContext(ctx, "embedding cache hit", "model", c.next.Model(), "kind", kind)
			return vec, nil
		}
		slog.WarnContext(ctx, "discarding malformed cached embedding", "key", key)
	case errors.Is(err, redis.Nil):
	default:
		slog.WarnContext(ctx, "embedding cache read failed", "error", err)
	}

	vec, err := c.next.Embed(ctx, text, kind)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(vec); err == nil {
		if err := c.redis.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			slog.WarnContext(ctx, "embedding cache write failed", "error", err)
		}
	}

	return vec, nil
}

func (c *CachedEmbedder) Model() string {
	return c.next.Model()
}

func (c *CachedEmbedder) key(text string, kind Kind) string {
	sum := sha256.Sum256([]byte(text))
	return cacheKeyPrefix + c.next.Model() + ":" + string(kind) + ":" + hex.EncodeToString(sum[:])
}
