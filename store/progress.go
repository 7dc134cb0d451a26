package store

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// ProgressSink receives progress of a bulk apply.
type ProgressSink interface {
	// Update reports the id of the record just processed. explicit is true when
	// the caller forces a report rather than the apply loop.
	Update(explicit bool, position uint64)
	// Done reports completion; total is the high id the apply ran to.
	Done(total uint64)
}

// LogProgress returns a sink that logs at most one update per interval and
// always logs completion. Explicit updates are never throttled.
func LogProgress(logger *slog.Logger, d Descriptor, interval time.Duration) ProgressSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &logProgress{
		logger:  logger,
		kind:    d.Kind().String(),
		high:    d.HighID(),
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		start:   time.Now(),
	}
}

// LogProgressInit adapts LogProgress to Processor.ProgressInit.
func LogProgressInit(logger *slog.Logger, interval time.Duration) func(Descriptor, uint64) ProgressSink {
	return func(d Descriptor, _ uint64) ProgressSink {
		return LogProgress(logger, d, interval)
	}
}

type logProgress struct {
	logger  *slog.Logger
	kind    string
	high    uint64
	limiter *rate.Limiter
	start   time.Time
}

func (l *logProgress) Update(explicit bool, position uint64) {
	if !explicit && !l.limiter.Allow() {
		return
	}
	l.logger.Info("apply progress", "kind", l.kind, "position", position, "high_id", l.high)
}

func (l *logProgress) Done(total uint64) {
	l.logger.Info("apply done", "kind", l.kind, "high_id", total, "elapsed", time.Since(l.start))
}
