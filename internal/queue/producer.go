package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type Producer interface {
	Publish(ctx context.Context, event QueryEvent) error
}

type redisProducer struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

// NewRedisProducer appends events to stream, trimming it to roughly maxLen
// entries when maxLen > 0.
func NewRedisProducer(client redis.Cmdable, stream string, maxLen int64) Producer {
	return &redisProducer{
		client: client,
		stream: stream,
		maxLen: maxLen,
	}
}

func (p *redisProducer) Publish(ctx context.Context, event QueryEvent) error {
	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: eventValues(event),
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	id, err := p.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("publish query event: %w", err)
	}

	slog.DebugContext(ctx, "published query event",
		"stream", p.stream,
		"message_id", id,
		"intent", event.Intent,
		"confidence", event.Confidence)
	return nil
}
