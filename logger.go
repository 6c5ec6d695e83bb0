package primego

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with primego-specific context.
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

// WithRange adds the sieved range to the logger.
func (l *Logger) WithRange(start, stop uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("start", start, "stop", stop),
	}
}

// WithThreads adds a thread-count field to the logger.
func (l *Logger) WithThreads(threads int) *Logger {
	return &Logger{
		Logger: l.Logger.With("threads", threads),
	}
}

// LogCount logs a count operation.
func (l *Logger) LogCount(ctx context.Context, start, stop, count uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "count failed",
			"start", start,
			"stop", stop,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "count completed",
			"start", start,
			"stop", stop,
			"count", count,
		)
	}
}

// LogGenerate logs a generate operation.
func (l *Logger) LogGenerate(ctx context.Context, start, stop uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "generate failed",
			"start", start,
			"stop", stop,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "generate completed",
			"start", start,
			"stop", stop,
		)
	}
}

// LogNthPrime logs an nth-prime search.
func (l *Logger) LogNthPrime(ctx context.Context, n, start, prime uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "nth prime failed",
			"n", n,
			"start", start,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "nth prime found",
			"n", n,
			"start", start,
			"prime", prime,
		)
	}
}
