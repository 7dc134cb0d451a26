package recstore

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/recstore/record"
	"github.com/hupe1980/recstore/store"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    reads *prometheus.CounterVec
//	}
//
//	func (p *PrometheusCollector) RecordRead(kind record.Kind, forced bool, d time.Duration, err error) {
//	    p.reads.WithLabelValues(kind.String()).Inc()
//	}
type MetricsCollector interface {
	// RecordRead is called after each record read. forced is true for reads
	// that bypass the cache; err is nil if successful.
	RecordRead(kind record.Kind, forced bool, duration time.Duration, err error)

	// RecordWrite is called after each record write. forced is true for
	// direct writes; buffered writes report the time to buffer the record.
	RecordWrite(kind record.Kind, forced bool, duration time.Duration, err error)

	// RecordCacheHit is called when a cached read is served from the cache.
	RecordCacheHit(kind record.Kind)

	// RecordCacheMiss is called when a cached read has to load the record.
	RecordCacheMiss(kind record.Kind)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRead(record.Kind, bool, time.Duration, error)  {}
func (NoopMetricsCollector) RecordWrite(record.Kind, bool, time.Duration, error) {}
func (NoopMetricsCollector) RecordCacheHit(record.Kind)                          {}
func (NoopMetricsCollector) RecordCacheMiss(record.Kind)                         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ReadCount        atomic.Int64
	ForcedReadCount  atomic.Int64
	ReadErrors       atomic.Int64
	ReadTotalNanos   atomic.Int64
	WriteCount       atomic.Int64
	ForcedWriteCount atomic.Int64
	WriteErrors      atomic.Int64
	CacheHits        atomic.Int64
	CacheMisses      atomic.Int64
}

// RecordRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRead(_ record.Kind, forced bool, duration time.Duration, err error) {
	if forced {
		b.ForcedReadCount.Add(1)
	} else {
		b.ReadCount.Add(1)
	}
	b.ReadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ReadErrors.Add(1)
	}
}

// RecordWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWrite(_ record.Kind, forced bool, _ time.Duration, err error) {
	if forced {
		b.ForcedWriteCount.Add(1)
	} else {
		b.WriteCount.Add(1)
	}
	if err != nil {
		b.WriteErrors.Add(1)
	}
}

// RecordCacheHit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheHit(record.Kind) {
	b.CacheHits.Add(1)
}

// RecordCacheMiss implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheMiss(record.Kind) {
	b.CacheMisses.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ReadCount:        b.ReadCount.Load(),
		ForcedReadCount:  b.ForcedReadCount.Load(),
		ReadErrors:       b.ReadErrors.Load(),
		ReadAvgNanos:     b.getAvgReadNanos(),
		WriteCount:       b.WriteCount.Load(),
		ForcedWriteCount: b.ForcedWriteCount.Load(),
		WriteErrors:      b.WriteErrors.Load(),
		CacheHits:        b.CacheHits.Load(),
		CacheMisses:      b.CacheMisses.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgReadNanos() int64 {
	count := b.ReadCount.Load() + b.ForcedReadCount.Load()
	if count == 0 {
		return 0
	}
	return b.ReadTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ReadCount        int64
	ForcedReadCount  int64
	ReadErrors       int64
	ReadAvgNanos     int64
	WriteCount       int64
	ForcedWriteCount int64
	WriteErrors      int64
	CacheHits        int64
	CacheMisses      int64
}

// CacheHitRate returns the fraction of cached reads served from the cache.
func (s BasicMetricsStats) CacheHitRate() float64 {
	total := s.CacheHits + s.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(total)
}

// metricsObserver adapts a MetricsCollector to store.MetricsObserver.
type metricsObserver struct {
	c MetricsCollector
}

var _ store.MetricsObserver = metricsObserver{}

func (m metricsObserver) OnRead(kind record.Kind, forced bool, d time.Duration, err error) {
	m.c.RecordRead(kind, forced, d, err)
}

func (m metricsObserver) OnWrite(kind record.Kind, forced bool, d time.Duration, err error) {
	m.c.RecordWrite(kind, forced, d, err)
}

func (m metricsObserver) OnCacheHit(kind record.Kind) {
	m.c.RecordCacheHit(kind)
}

func (m metricsObserver) OnCacheMiss(kind record.Kind) {
	m.c.RecordCacheMiss(kind)
}
