package matchgo

import (
	"log/slog"
	"math/rand"
)

type options struct {
	logger      *Logger
	metrics     MetricsCollector
	perm        func(n int) []int
	topK        int
	parallelism int
}

// Option configures Study behavior.
type Option func(*options)

// WithLogger configures structured logging for the study run.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
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

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithRand makes the matching engine draw control processing orders from r,
// so a seeded generator yields reproducible runs.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		o.perm = r.Perm
	}
}

// WithTopK sets how many of the highest-similarity pairs the report keeps.
// The default is 5.
func WithTopK(k int) Option {
	return func(o *options) {
		o.topK = k
	}
}

// WithParallelism bounds concurrent index queries during with-replacement
// matching. Without-replacement matching is always sequential.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:  NoopLogger(),
		metrics: NoopMetricsCollector{},
		topK:    5,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
