package gridstore

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    insertCounter prometheus.Counter
//	    readHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordInsert(count int, duration time.Duration, err error) {
//	    p.insertCounter.Add(float64(count))
//	}
type MetricsCollector interface {
	// RecordInsert is called after each insert of count tuples.
	RecordInsert(count int, duration time.Duration, err error)

	// RecordRead is called after each field or row read.
	RecordRead(duration time.Duration, err error)

	// RecordWrite is called after each in-place field update.
	RecordWrite(duration time.Duration, err error)

	// RecordDelete is called after each delete of count tuples.
	RecordDelete(count int, duration time.Duration, err error)

	// RecordScan is called after each table scan that visited rows tuples.
	RecordScan(rows int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordRead(time.Duration, error)        {}
func (NoopMetricsCollector) RecordWrite(time.Duration, error)       {}
func (NoopMetricsCollector) RecordDelete(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordScan(int, time.Duration, error)   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount      atomic.Int64
	InsertTuples     atomic.Int64
	InsertErrors     atomic.Int64
	InsertTotalNanos atomic.Int64
	ReadCount        atomic.Int64
	ReadErrors       atomic.Int64
	ReadTotalNanos   atomic.Int64
	WriteCount       atomic.Int64
	WriteErrors      atomic.Int64
	DeleteCount      atomic.Int64
	DeleteTuples     atomic.Int64
	DeleteErrors     atomic.Int64
	ScanCount        atomic.Int64
	ScanRows         atomic.Int64
	ScanErrors       atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(count int, duration time.Duration, err error) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.InsertErrors.Add(1)
		return
	}
	b.InsertTuples.Add(int64(count))
}

// RecordRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRead(duration time.Duration, err error) {
	b.ReadCount.Add(1)
	b.ReadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ReadErrors.Add(1)
	}
}

// RecordWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWrite(_ time.Duration, err error) {
	b.WriteCount.Add(1)
	if err != nil {
		b.WriteErrors.Add(1)
	}
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(count int, _ time.Duration, err error) {
	b.DeleteCount.Add(1)
	if err != nil {
		b.DeleteErrors.Add(1)
		return
	}
	b.DeleteTuples.Add(int64(count))
}

// RecordScan implements MetricsCollector.
func (b *BasicMetricsCollector) RecordScan(rows int, _ time.Duration, err error) {
	b.ScanCount.Add(1)
	b.ScanRows.Add(int64(rows))
	if err != nil {
		b.ScanErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InsertCount:    b.InsertCount.Load(),
		InsertTuples:   b.InsertTuples.Load(),
		InsertErrors:   b.InsertErrors.Load(),
		InsertAvgNanos: avg(b.InsertTotalNanos.Load(), b.InsertCount.Load()),
		ReadCount:      b.ReadCount.Load(),
		ReadErrors:     b.ReadErrors.Load(),
		ReadAvgNanos:   avg(b.ReadTotalNanos.Load(), b.ReadCount.Load()),
		WriteCount:     b.WriteCount.Load(),
		WriteErrors:    b.WriteErrors.Load(),
		DeleteCount:    b.DeleteCount.Load(),
		DeleteTuples:   b.DeleteTuples.Load(),
		DeleteErrors:   b.DeleteErrors.Load(),
		ScanCount:      b.ScanCount.Load(),
		ScanRows:       b.ScanRows.Load(),
		ScanErrors:     b.ScanErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InsertCount    int64
	InsertTuples   int64
	InsertErrors   int64
	InsertAvgNanos int64
	ReadCount      int64
	ReadErrors     int64
	ReadAvgNanos   int64
	WriteCount     int64
	WriteErrors    int64
	DeleteCount    int64
	DeleteTuples   int64
	DeleteErrors   int64
	ScanCount      int64
	ScanRows       int64
	ScanErrors     int64
}
