package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"

	"loomsales.app/copilot/core/config"
)

// Setup installs the default slog logger for the process. The returned
// function closes the log file when LOG_FILE is configured.
func Setup(cfg config.Config) (func() error, error) {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if cfg.IsDevelopment() {
		opts.Level = slog.LevelDebug
	}

	var primary slog.Handler
	switch {
	case cfg.IsProduction() && cfg.OTel.Enabled():
		primary = otelslog.NewHandler(
			cfg.OTel.ServiceName,
			otelslog.WithLoggerProvider(global.GetLoggerProvider()),
		)
	case cfg.IsProduction():
		primary = NewTraceHandler(slog.NewJSONHandler(os.Stdout, opts))
	default:
		primary = NewTraceHandler(slog.NewTextHandler(os.Stdout, opts))
	}

	closeFn := func() error { return nil }
	handler := primary

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return closeFn, fmt.Errorf("opening log file %s: %w", cfg.LogFile, err)
		}
		handler = slogmulti.Fanout(primary, newFileHandler(f, opts))
		closeFn = f.Close
	}

	slog.SetDefault(slog.New(handler))
	return closeFn, nil
}

func newFileHandler(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	return NewTraceHandler(slog.NewJSONHandler(w, opts))
}

// TraceHandler decorates records with the active trace/span IDs and the
// LogFields stored in the record's context.
type TraceHandler struct {
	slog.Handler
}

func NewTraceHandler(h slog.Handler) *TraceHandler {
	return &TraceHandler{Handler: h}
}

func (h *TraceHandler) Handle(ctx context.Context, r slog.Record) error {
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	fields := GetLogFields(ctx)
	if fields.RequestID != nil {
		r.AddAttrs(slog.Int64("request_id", *fields.RequestID))
	}
	if fields.Stage != "" {
		r.AddAttrs(slog.String("stage", fields.Stage))
	}
	if fields.Intent != nil {
		r.AddAttrs(slog.String("intent", *fields.Intent))
	}
	if fields.Component != "" {
		r.AddAttrs(slog.String("component", fields.Component))
	}

	return h.Handler.Handle(ctx, r)
}

func (h *TraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *TraceHandler) WithGroup(name string) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithGroup(name)}
}
