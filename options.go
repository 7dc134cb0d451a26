package recstore

import (
	"log/slog"
	"maps"

	"github.com/hupe1980/recstore/config"
	"github.com/hupe1980/recstore/internal/fs"
)

type options struct {
	params           config.Params
	logger           *Logger
	metricsCollector MetricsCollector
	memoryLimit      int64
	fs               fs.FileSystem
}

// Option configures Open.
type Option func(*options)

// WithConfig sets the store parameters. params are merged over
// config.DefaultParams; later WithConfig calls override earlier ones.
func WithConfig(params config.Params) Option {
	return func(o *options) {
		merged := maps.Clone(o.params)
		maps.Copy(merged, params)
		o.params = config.New(merged)
	}
}

// WithReadOnly opens every store read-only.
func WithReadOnly() Option {
	return func(o *options) {
		merged := maps.Clone(o.params)
		merged[config.ReadOnly] = "true"
		o.params = merged
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithLogLevel logs human-readable text to stderr at level and above.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector sets the metrics collector for every store.
func WithMetricsCollector(c MetricsCollector) Option {
	return func(o *options) {
		if c == nil {
			c = NoopMetricsCollector{}
		}
		o.metricsCollector = c
	}
}

// WithMemoryLimit bounds the memory of all record caches together, in bytes.
// If set to 0, only the per-store mapped_memory budgets apply.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

func withFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}
