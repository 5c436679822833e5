package skyindex

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/skyindex/capacity"
)

// MetricsCollector defines an interface for collecting operational metrics.
// See metrics/prometheus for a Prometheus implementation.
type MetricsCollector interface {
	// RecordBuild is called after each component of an engine is built.
	// records is the number of input records, err is nil if successful.
	RecordBuild(p Prototype, component string, records int, duration time.Duration, err error)

	// RecordQuery is called after each query on an engine.
	RecordQuery(p Prototype, kind QueryKind, duration time.Duration, err error)

	// RecordBooking is called after each validated booking.
	// err is non-nil when the booking was rejected.
	RecordBooking(p Prototype, err error)

	// RecordValidation is called for each validated flight.
	RecordValidation(p Prototype, status capacity.Status)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(Prototype, string, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordQuery(Prototype, QueryKind, time.Duration, error)   {}
func (NoopMetricsCollector) RecordBooking(Prototype, error)                           {}
func (NoopMetricsCollector) RecordValidation(Prototype, capacity.Status)              {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Counters are kept per prototype and indexed by Prototype-1.
type BasicMetricsCollector struct {
	BuildCount      [2]atomic.Int64
	BuildRecords    [2]atomic.Int64
	BuildErrors     [2]atomic.Int64
	BuildTotalNanos [2]atomic.Int64
	QueryCount      [2]atomic.Int64
	QueryErrors     [2]atomic.Int64
	QueryTotalNanos [2]atomic.Int64
	BookingCount    [2]atomic.Int64
	BookingRejected [2]atomic.Int64
	OverCapacity    [2]atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(p Prototype, _ string, records int, duration time.Duration, err error) {
	i, ok := p.slot()
	if !ok {
		return
	}
	b.BuildCount[i].Add(1)
	b.BuildRecords[i].Add(int64(records))
	b.BuildTotalNanos[i].Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors[i].Add(1)
	}
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(p Prototype, _ QueryKind, duration time.Duration, err error) {
	i, ok := p.slot()
	if !ok {
		return
	}
	b.QueryCount[i].Add(1)
	b.QueryTotalNanos[i].Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors[i].Add(1)
	}
}

// RecordBooking implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBooking(p Prototype, err error) {
	i, ok := p.slot()
	if !ok {
		return
	}
	b.BookingCount[i].Add(1)
	if err != nil {
		b.BookingRejected[i].Add(1)
	}
}

// RecordValidation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordValidation(p Prototype, status capacity.Status) {
	i, ok := p.slot()
	if !ok {
		return
	}
	if status == capacity.Over {
		b.OverCapacity[i].Add(1)
	}
}

// GetStats returns a snapshot of the metrics of one prototype.
func (b *BasicMetricsCollector) GetStats(p Prototype) BasicMetricsStats {
	i, ok := p.slot()
	if !ok {
		return BasicMetricsStats{}
	}
	return BasicMetricsStats{
		BuildCount:      b.BuildCount[i].Load(),
		BuildRecords:    b.BuildRecords[i].Load(),
		BuildErrors:     b.BuildErrors[i].Load(),
		BuildTotalNanos: b.BuildTotalNanos[i].Load(),
		QueryCount:      b.QueryCount[i].Load(),
		QueryErrors:     b.QueryErrors[i].Load(),
		QueryAvgNanos:   avg(b.QueryTotalNanos[i].Load(), b.QueryCount[i].Load()),
		BookingCount:    b.BookingCount[i].Load(),
		BookingRejected: b.BookingRejected[i].Load(),
		OverCapacity:    b.OverCapacity[i].Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state for one prototype.
type BasicMetricsStats struct {
	BuildCount      int64
	BuildRecords    int64
	BuildErrors     int64
	BuildTotalNanos int64
	QueryCount      int64
	QueryErrors     int64
	QueryAvgNanos   int64
	BookingCount    int64
	BookingRejected int64
	OverCapacity    int64
}
