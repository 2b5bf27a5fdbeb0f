package patternmon

import (
	"context"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

var stderr io.Writer = os.Stderr

// Component is attached to every record as the "component" attribute.
const Component = "pattern-monitor"

// Logger wraps slog.Logger with pattern-monitor specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler).With("component", Component),
	}
}

// NewJSONLogger creates a Logger that writes JSON records to w.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that writes logfmt records to w.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewPrettyLogger creates a Logger with colorized, human-oriented output
// for terminals.
func NewPrettyLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmlog.Level(level),
		ReportTimestamp: true,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// With returns a Logger that adds args to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// LogReceived logs an inbound message.
func (l *Logger) LogReceived(ctx context.Context, subject string, size int) {
	l.InfoContext(ctx, "received message",
		"subject", subject,
		"bytes", size,
	)
}

// LogStored logs a persisted semantic vector.
func (l *Logger) LogStored(ctx context.Context, field, key string, size int) {
	l.DebugContext(ctx, "stored semantic vector",
		"field", field,
		"key", key,
		"bytes", size,
	)
}

// LogBundle logs the persisted bundle vector of a message.
func (l *Logger) LogBundle(ctx context.Context, subject, key string, fields, size int) {
	l.InfoContext(ctx, "stored master bundle",
		"subject", subject,
		"key", key,
		"fields", fields,
		"bytes", size,
	)
}

// LogRetrieval logs the outcome of the retrieval self-check.
func (l *Logger) LogRetrieval(ctx context.Context, field string, k, results int, err error) {
	if err != nil {
		l.WarnContext(ctx, "retrieval query failed",
			"field", field,
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "retrieval query completed",
			"field", field,
			"k", k,
			"results", results,
		)
	}
}

// LogWriteFailed logs the store failure that aborted a message.
func (l *Logger) LogWriteFailed(ctx context.Context, key string, err error) {
	l.WarnContext(ctx, "write failed; aborting remaining writes",
		"key", key,
		"error", err,
	)
}
