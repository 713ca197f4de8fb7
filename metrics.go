package matchgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems.
type MetricsCollector interface {
	// RecordPartition is called after the population is split.
	RecordPartition(treatment, control int, duration time.Duration)

	// RecordMatch is called after each matching run.
	// records is the number of accepted matches, unmatched the number of
	// dropped controls; err is nil if successful.
	RecordMatch(records, unmatched int, duration time.Duration, err error)

	// RecordAggregate is called after outcome aggregation.
	RecordAggregate(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordPartition(int, int, time.Duration)    {}
func (NoopMetricsCollector) RecordMatch(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordAggregate(time.Duration, error)       {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	PartitionCount    atomic.Int64
	MatchCount        atomic.Int64
	MatchErrors       atomic.Int64
	MatchRecords      atomic.Int64
	UnmatchedControls atomic.Int64
	MatchTotalNanos   atomic.Int64
	AggregateCount    atomic.Int64
	AggregateErrors   atomic.Int64
}

// RecordPartition implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPartition(treatment, control int, duration time.Duration) {
	b.PartitionCount.Add(1)
}

// RecordMatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMatch(records, unmatched int, duration time.Duration, err error) {
	b.MatchCount.Add(1)
	b.MatchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.MatchErrors.Add(1)
		return
	}
	b.MatchRecords.Add(int64(records))
	b.UnmatchedControls.Add(int64(unmatched))
}

// RecordAggregate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAggregate(duration time.Duration, err error) {
	b.AggregateCount.Add(1)
	if err != nil {
		b.AggregateErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		PartitionCount:    b.PartitionCount.Load(),
		MatchCount:        b.MatchCount.Load(),
		MatchErrors:       b.MatchErrors.Load(),
		MatchRecords:      b.MatchRecords.Load(),
		UnmatchedControls: b.UnmatchedControls.Load(),
		MatchAvgNanos:     b.getAvgMatchNanos(),
		AggregateCount:    b.AggregateCount.Load(),
		AggregateErrors:   b.AggregateErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgMatchNanos() int64 {
	count := b.MatchCount.Load()
	if count == 0 {
		return 0
	}
	return b.MatchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	PartitionCount    int64
	MatchCount        int64
	MatchErrors       int64
	MatchRecords      int64
	UnmatchedControls int64
	MatchAvgNanos     int64
	AggregateCount    int64
	AggregateErrors   int64
}
