package backup

import (
	"log/slog"
	"time"

	"github.com/klauspost/compress/zstd"
)

const (
	// DefaultConcurrency is the number of stores copied at once.
	DefaultConcurrency = 2
	// DefaultProgressInterval throttles progress logging.
	DefaultProgressInterval = 5 * time.Second
)

type options struct {
	compression      Compression
	level            zstd.EncoderLevel
	prefix           string
	concurrency      int64
	ioLimit          int64
	logger           *slog.Logger
	progressInterval time.Duration
}

func defaultOptions() options {
	return options{
		compression:      CompressionZstd,
		level:            zstd.SpeedDefault,
		concurrency:      DefaultConcurrency,
		progressInterval: DefaultProgressInterval,
	}
}

// Option configures Run and Restore.
type Option func(*options)

// WithCompression sets the codec of new backups. Restore reads the codec from
// each blob header.
func WithCompression(c Compression) Option {
	return func(o *options) { o.compression = c }
}

// WithZstdLevel sets the zstd encoder level.
func WithZstdLevel(level zstd.EncoderLevel) Option {
	return func(o *options) { o.level = level }
}

// WithPrefix places the backup blobs under prefix.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithConcurrency sets how many stores are processed at once.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = int64(n)
		}
	}
}

// WithIOLimit caps the bytes per second written to or read from the blob store.
// 0 means unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) { o.ioLimit = bytesPerSec }
}

// WithLogger enables progress and summary logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithProgressInterval sets the minimum time between progress log lines.
func WithProgressInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.progressInterval = d
		}
	}
}
