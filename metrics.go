package primego

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
//	    countCounter   prometheus.Counter
//	    countHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordCount(duration time.Duration, err error) {
//	    p.countCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordCount is called after each count operation.
	// duration is the total time taken, err is nil if successful.
	RecordCount(duration time.Duration, err error)

	// RecordGenerate is called after each generate operation (including
	// iterator and bitmap collection runs).
	RecordGenerate(duration time.Duration, err error)

	// RecordNthPrime is called after each nth-prime search.
	RecordNthPrime(duration time.Duration, err error)

	// RecordSegments is called once per run with the number of sieve
	// segments processed.
	RecordSegments(segments uint64)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCount(time.Duration, error)    {}
func (NoopMetricsCollector) RecordGenerate(time.Duration, error) {}
func (NoopMetricsCollector) RecordNthPrime(time.Duration, error) {}
func (NoopMetricsCollector) RecordSegments(uint64)               {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	CountCount         atomic.Int64
	CountErrors        atomic.Int64
	CountTotalNanos    atomic.Int64
	GenerateCount      atomic.Int64
	GenerateErrors     atomic.Int64
	GenerateTotalNanos atomic.Int64
	NthPrimeCount      atomic.Int64
	NthPrimeErrors     atomic.Int64
	NthPrimeTotalNanos atomic.Int64
	SegmentsProcessed  atomic.Int64
}

// RecordCount implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCount(duration time.Duration, err error) {
	b.CountCount.Add(1)
	b.CountTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.CountErrors.Add(1)
	}
}

// RecordGenerate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGenerate(duration time.Duration, err error) {
	b.GenerateCount.Add(1)
	b.GenerateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.GenerateErrors.Add(1)
	}
}

// RecordNthPrime implements MetricsCollector.
func (b *BasicMetricsCollector) RecordNthPrime(duration time.Duration, err error) {
	b.NthPrimeCount.Add(1)
	b.NthPrimeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.NthPrimeErrors.Add(1)
	}
}

// RecordSegments implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSegments(segments uint64) {
	b.SegmentsProcessed.Add(int64(segments))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		CountCount:        b.CountCount.Load(),
		CountErrors:       b.CountErrors.Load(),
		CountAvgNanos:     avgNanos(&b.CountTotalNanos, &b.CountCount),
		GenerateCount:     b.GenerateCount.Load(),
		GenerateErrors:    b.GenerateErrors.Load(),
		GenerateAvgNanos:  avgNanos(&b.GenerateTotalNanos, &b.GenerateCount),
		NthPrimeCount:     b.NthPrimeCount.Load(),
		NthPrimeErrors:    b.NthPrimeErrors.Load(),
		NthPrimeAvgNanos:  avgNanos(&b.NthPrimeTotalNanos, &b.NthPrimeCount),
		SegmentsProcessed: b.SegmentsProcessed.Load(),
	}
}

func avgNanos(total, count *atomic.Int64) int64 {
	n := count.Load()
	if n == 0 {
		return 0
	}
	return total.Load() / n
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	CountCount        int64
	CountErrors       int64
	CountAvgNanos     int64
	GenerateCount     int64
	GenerateErrors    int64
	GenerateAvgNanos  int64
	NthPrimeCount     int64
	NthPrimeErrors    int64
	NthPrimeAvgNanos  int64
	SegmentsProcessed int64
}
