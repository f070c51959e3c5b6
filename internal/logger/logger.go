package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

// Config holds logger configuration
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// New builds a logger writing to w.
func New(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Init installs a stderr logger as the slog default and returns it.
func Init(cfg Config) *slog.Logger {
	l := New(cfg, os.Stderr)
	slog.SetDefault(l)
	return l
}

func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithContext returns the default logger annotated with ids found in ctx.
func WithContext(ctx context.Context) *slog.Logger {
	return From(ctx, slog.Default())
}

// From annotates base with the request and job ids found in ctx.
func From(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	if id := common.RequestIDFromContext(ctx); id != "" {
		base = base.With("request_id", id)
	}
	if id := common.JobIDFromContext(ctx); id != "" {
		base = base.With("job_id", id)
	}
	return base
}
