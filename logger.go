package recstore

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/recstore/record"
)

// Logger wraps slog.Logger with recstore-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithStore adds a store path field to the logger.
func (l *Logger) WithStore(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("store", path),
	}
}

// WithKind adds a record kind field to the logger.
func (l *Logger) WithKind(kind record.Kind) *Logger {
	return &Logger{
		Logger: l.Logger.With("kind", kind.String()),
	}
}

// LogOpen logs the opening of a store directory.
func (l *Logger) LogOpen(ctx context.Context, dir string, readOnly bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"dir", dir,
			"read_only", readOnly,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "store directory opened",
			"dir", dir,
			"read_only", readOnly,
		)
	}
}

// LogClose logs the closing of a store directory.
func (l *Logger) LogClose(ctx context.Context, dir string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "close failed",
			"dir", dir,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "store directory closed",
			"dir", dir,
		)
	}
}

// LogApply logs a processor run over one store.
func (l *Logger) LogApply(ctx context.Context, processor string, kind record.Kind, highID uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "apply failed",
			"processor", processor,
			"kind", kind.String(),
			"high_id", highID,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "apply completed",
			"processor", processor,
			"kind", kind.String(),
			"high_id", highID,
		)
	}
}
