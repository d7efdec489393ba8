package soa

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives structural events from tables.
// Implement this interface to integrate with monitoring systems; see
// package metrics/prometheus for a Prometheus implementation.
//
// Implementations are called while the table's structural lock is held and
// must not call back into the table.
type MetricsCollector interface {
	// RecordAcquire is called after each acquire. grew reports whether a
	// block had to be linked first.
	RecordAcquire(grew bool)

	// RecordRelease is called after each release. reset is false for
	// ReleaseNoReset.
	RecordRelease(reset bool)

	// RecordClear is called after each clear.
	RecordClear(capacity int)

	// RecordGrow is called after a block is linked.
	RecordGrow(capacity int)

	// RecordClose is called once when the table is closed; the capacity
	// drops to zero.
	RecordClose()

	// RecordSnapshot is called after a snapshot save or load.
	RecordSnapshot(op string, bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAcquire(bool)                                 {}
func (NoopMetricsCollector) RecordRelease(bool)                                 {}
func (NoopMetricsCollector) RecordClear(int)                                    {}
func (NoopMetricsCollector) RecordGrow(int)                                     {}
func (NoopMetricsCollector) RecordClose()                                       {}
func (NoopMetricsCollector) RecordSnapshot(string, int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	AcquireCount        atomic.Int64
	GrowCount           atomic.Int64
	ReleaseCount        atomic.Int64
	ReleaseNoResetCount atomic.Int64
	ClearCount          atomic.Int64
	Capacity            atomic.Int64
	SnapshotCount       atomic.Int64
	SnapshotErrors      atomic.Int64
	SnapshotBytes       atomic.Int64
	SnapshotTotalNanos  atomic.Int64
}

// RecordAcquire implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAcquire(bool) {
	b.AcquireCount.Add(1)
}

// RecordRelease implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRelease(reset bool) {
	if reset {
		b.ReleaseCount.Add(1)
	} else {
		b.ReleaseNoResetCount.Add(1)
	}
}

// RecordClear implements MetricsCollector.
func (b *BasicMetricsCollector) RecordClear(capacity int) {
	b.ClearCount.Add(1)
	b.Capacity.Store(int64(capacity))
}

// RecordGrow implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGrow(capacity int) {
	b.GrowCount.Add(1)
	b.Capacity.Store(int64(capacity))
}

// RecordClose implements MetricsCollector.
func (b *BasicMetricsCollector) RecordClose() {
	b.Capacity.Store(0)
}

// RecordSnapshot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshot(_ string, bytes int64, duration time.Duration, err error) {
	b.SnapshotCount.Add(1)
	b.SnapshotTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SnapshotErrors.Add(1)
		return
	}
	b.SnapshotBytes.Add(bytes)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AcquireCount:        b.AcquireCount.Load(),
		GrowCount:           b.GrowCount.Load(),
		ReleaseCount:        b.ReleaseCount.Load(),
		ReleaseNoResetCount: b.ReleaseNoResetCount.Load(),
		ClearCount:          b.ClearCount.Load(),
		Capacity:            b.Capacity.Load(),
		SnapshotCount:       b.SnapshotCount.Load(),
		SnapshotErrors:      b.SnapshotErrors.Load(),
		SnapshotBytes:       b.SnapshotBytes.Load(),
		SnapshotAvgNanos:    b.getAvgSnapshotNanos(),
	}
}

func (b *BasicMetricsCollector) getAvgSnapshotNanos() int64 {
	count := b.SnapshotCount.Load()
	if count == 0 {
		return 0
	}
	return b.SnapshotTotalNanos.Load() / count
}

// BasicMetricsStats is a point-in-time copy of BasicMetricsCollector.
type BasicMetricsStats struct {
	AcquireCount        int64
	GrowCount           int64
	ReleaseCount        int64
	ReleaseNoResetCount int64
	ClearCount          int64
	Capacity            int64
	SnapshotCount       int64
	SnapshotErrors      int64
	SnapshotBytes       int64
	SnapshotAvgNanos    int64
}
