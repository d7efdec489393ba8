package soa

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with table-specific helpers.
// Only structural events are logged; element accessors never log.
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
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// WithTable adds the table name to every record.
func (l *Logger) WithTable(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("table", name),
	}
}

// LogGrow logs the linking of a new block.
func (l *Logger) LogGrow(blocks, capacity int) {
	l.Debug("block linked",
		"blocks", blocks,
		"capacity", capacity,
	)
}

// LogClear logs a full reset.
func (l *Logger) LogClear(capacity int) {
	l.Debug("table cleared",
		"capacity", capacity,
	)
}

// LogClose logs the release of all blocks.
func (l *Logger) LogClose(blocks int) {
	l.Debug("table closed",
		"blocks", blocks,
	)
}

// LogSnapshot logs a snapshot save or load.
func (l *Logger) LogSnapshot(ctx context.Context, op string, info Info, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"op", op,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot completed",
		"op", op,
		"id", info.ID,
		"capacity", info.Capacity,
		"active", info.ActiveRows,
		"bytes", info.Bytes,
	)
}
