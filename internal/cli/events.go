package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"loomsales.app/copilot/internal/queue"
)

func newEventsCommand(e *env) *cobra.Command {
	var (
		group  string
		follow bool
		batch  int64
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Read answered-query events from the Redis stream",
		Long: `Read answered-query events through a consumer group, acknowledging
each one. Without --follow, reads what is pending and exits.

Examples:
  copilot events
  copilot events --group dashboards --follow`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			rdb, err := e.redisClient(ctx)
			if err != nil {
				return err
			}
			if rdb == nil {
				return errors.New("REDIS_URL is not set")
			}

			hostname, _ := os.Hostname()
			cfg := queue.ConsumerConfig{
				Stream:    e.cfg.Redis.EventStream,
				Group:     group,
				Consumer:  fmt.Sprintf("cli-%s-%d", hostname, os.Getpid()),
				BatchSize: batch,
			}
			if follow {
				cfg.Block = 5 * time.Second
			}

			consumer, err := queue.NewRedisConsumer(ctx, rdb, cfg)
			if err != nil {
				return err
			}
			return drainEvents(ctx, consumer, e.out, follow)
		},
	}

	cmd.Flags().StringVar(&group, "group", "cli", "consumer group name")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep reading until interrupted")
	cmd.Flags().Int64Var(&batch, "batch", 50, "events per read")

	return cmd
}

type eventReader interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, ids ...string) error
}

func drainEvents(ctx context.Context, r eventReader, w io.Writer, follow bool) error {
	for {
		messages, err := r.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		ids := make([]string, 0, len(messages))
		for _, m := range messages {
			printEvent(w, m.Event)
			ids = append(ids, m.ID)
		}
		if err := r.Ack(ctx, ids...); err != nil {
			return err
		}

		if len(messages) == 0 && !follow {
			return nil
		}
	}
}

func printEvent(w io.Writer, ev queue.QueryEvent) {
	fmt.Fprintf(w, "%d intent=%s module=%s confidence=%s top=%.4f tokens=%d latency=%dms",
		ev.RequestID, ev.Intent, ev.Module, ev.Confidence, ev.TopScore, ev.TotalTokens, ev.LatencyMs)
	if ev.MemorySource != "" {
		fmt.Fprintf(w, " memory=%s", ev.MemorySource)
	}
	fmt.Fprintln(w)
}
