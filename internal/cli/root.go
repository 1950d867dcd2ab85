// Package cli provides the operator command line for the sales copilot.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"loomsales.app/copilot/common/id"
	"loomsales.app/copilot/common/logger"
	"loomsales.app/copilot/core/config"
	"loomsales.app/copilot/core/db"
	"loomsales.app/copilot/internal/app"
)

// Version is set at build time.
var Version = "0.1.0"

// env holds what a command run needs. Connections are opened on first use
// and closed after the command.
type env struct {
	cfg     config.Config
	verbose bool
	out     io.Writer

	database *db.DB
	redis    *redis.Client
}

func (e *env) db(ctx context.Context) (*db.DB, error) {
	if e.database != nil {
		return e.database, nil
	}
	database, err := db.New(ctx, e.cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	e.database = database
	return database, nil
}

func (e *env) redisClient(ctx context.Context) (*redis.Client, error) {
	if e.redis != nil {
		return e.redis, nil
	}
	client, err := app.ConnectRedis(ctx, e.cfg.Redis)
	if err != nil {
		return nil, err
	}
	e.redis = client
	return client, nil
}

// copilot assembles the pipeline, connecting to Postgres only when the
// search backend needs it.
func (e *env) copilot(ctx context.Context) (*app.Copilot, error) {
	var conn db.DBTX
	if e.cfg.Search.Backend == config.SearchBackendPostgres {
		database, err := e.db(ctx)
		if err != nil {
			return nil, err
		}
		conn = database.Conn()
	}

	rdb, err := e.redisClient(ctx)
	if err != nil {
		slog.WarnContext(ctx, "redis unavailable, continuing without cache", "error", err)
		rdb = nil
	}

	return app.BuildCopilot(ctx, e.cfg, conn, rdb)
}

func (e *env) close() {
	if e.database != nil {
		e.database.Close()
		e.database = nil
	}
	if e.redis != nil {
		if err := e.redis.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close redis: %v\n", err)
		}
		e.redis = nil
	}
}

// NewRootCommand builds the command tree writing to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	e := &env{out: out}

	root := &cobra.Command{
		Use:   "copilot",
		Short: "Sales copilot operator tools",
		Long: `Operator tools for the textile MES sales copilot.

Runs the answering pipeline, embeddings and CRM lookups from the terminal
with the same configuration as the server.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			e.cfg = cfg

			level := slog.LevelWarn
			if e.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(logger.NewTraceHandler(
				slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
			)))

			return id.Init(cfg.NodeID)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			e.close()
		},
	}

	root.SetOut(out)
	root.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "log pipeline stages to stderr")

	root.AddCommand(newAskCommand(e))
	root.AddCommand(newEmbedCommand(e))
	root.AddCommand(newCrmCommand(e))
	root.AddCommand(newEventsCommand(e))

	return root
}

// Execute runs the CLI against stdout until it finishes or is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand(os.Stdout).ExecuteContext(ctx)
}
