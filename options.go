package primego

import (
	"log/slog"

	"github.com/hupe1980/primego/cpuinfo"
)

type options struct {
	segmentBytes     int
	threads          int
	memoryLimit      int64
	metricsCollector MetricsCollector
	logger           *Logger
	progressFunc     func(percentDone float64)
	cpu              *cpuinfo.CPUInfo
}

// Option configures Sieve constructor behavior.
type Option func(*options)

// WithSegmentSize overrides the sieve segment buffer size in bytes. One
// byte of buffer covers 30 integers. The value is clamped to [64, 4 MiB].
//
// By default the size is derived from the CPU's cache topology (L1 data
// cache, or a per-thread share of the L2). Segment size is a tuning knob
// only: results are identical for any size.
func WithSegmentSize(bytes int) Option {
	return func(o *options) {
		o.segmentBytes = bytes
	}
}

// WithThreads sets the worker count for parallel operations.
//
// Defaults to the number of hardware threads. n <= 1 forces
// single-threaded runs. Small ranges run single-threaded regardless,
// since tiling overhead would dominate.
func WithThreads(n int) Option {
	return func(o *options) {
		o.threads = n
	}
}

// WithMemoryLimit puts a hard ceiling on the memory held by a run:
// segment buffers plus the bucket blocks of the large-prime tier.
// A run that cannot stay under the ceiling fails with ErrPoolExhausted.
//
// 0 (the default) means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &primego.BasicMetricsCollector{}
//	s, _ := primego.New(primego.WithMetricsCollector(metrics))
//	// ... use s ...
//	stats := metrics.GetStats()
//	fmt.Printf("Counts: %d, Avg latency: %dns\n", stats.CountCount, stats.CountAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := primego.NewJSONLogger(slog.LevelInfo)
//	s, _ := primego.New(primego.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithProgressFunc registers a callback reporting run progress in percent
// (0..100). Calls are rate-limited; 100 is always reported when a run
// finishes. The callback must be safe for concurrent use when threads > 1.
func WithProgressFunc(fn func(percentDone float64)) Option {
	return func(o *options) {
		o.progressFunc = fn
	}
}

// WithCPUInfo injects a cache-topology snapshot instead of detecting one.
// Useful for tests and for pinning tuning decisions across machines.
func WithCPUInfo(cpu *cpuinfo.CPUInfo) Option {
	return func(o *options) {
		o.cpu = cpu
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
