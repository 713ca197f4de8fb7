package matchgo

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/matchgo/match"
	"github.com/hupe1980/matchgo/stats"
)

// Logger wraps slog.Logger with matchgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithThreshold adds a threshold field to the logger.
func (l *Logger) WithThreshold(threshold float32) *Logger {
	return &Logger{
		Logger: l.Logger.With("threshold", threshold),
	}
}

// WithDistance adds a distance-mode field to the logger.
func (l *Logger) WithDistance(d match.Distance) *Logger {
	return &Logger{
		Logger: l.Logger.With("distance", d.String()),
	}
}

// LogPartition logs the treatment/control split.
func (l *Logger) LogPartition(ctx context.Context, treatment, control int) {
	l.InfoContext(ctx, "population partitioned",
		"treatment", treatment,
		"control", control,
	)
}

// LogMatch logs a matching run.
func (l *Logger) LogMatch(ctx context.Context, records, unmatched int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "matching failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "matching completed",
			"records", records,
			"unmatched_controls", unmatched,
		)
	}
}

// LogTopPairs logs the highest-similarity matched pairs.
func (l *Logger) LogTopPairs(ctx context.Context, pairs []match.Pair) {
	for rank, p := range pairs {
		l.InfoContext(ctx, "top pair",
			"rank", rank+1,
			"control", p.ControlID,
			"treatment", p.TreatmentID,
			"similarity", p.Score,
		)
	}
}

// LogAggregate logs the outcome-rate aggregation.
func (l *Logger) LogAggregate(ctx context.Context, effect stats.Effect, err error) {
	if err != nil {
		l.ErrorContext(ctx, "aggregation failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "aggregation completed",
			"p_treatment", effect.PTreatment,
			"p_control", effect.PControl,
			"p_pooled", effect.PPooled,
		)
	}
}
