package gridstore

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/gridstore/model"
)

// Logger wraps slog.Logger with gridstore-specific context.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithTable adds a table field to the logger.
func (l *Logger) WithTable(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("table", name),
	}
}

// WithTuple adds a tuple field to the logger.
func (l *Logger) WithTuple(tid model.TupleID) *Logger {
	return &Logger{
		Logger: l.Logger.With("tuple", tid),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogCreateTable logs a table creation.
func (l *Logger) LogCreateTable(ctx context.Context, name string, attrs int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "create table failed",
			"table", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "table created",
			"table", name,
			"attrs", attrs,
		)
	}
}

// LogDropTable logs a table drop.
func (l *Logger) LogDropTable(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "drop table failed",
			"table", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "table dropped",
			"table", name,
		)
	}
}

// LogInsert logs an insert of count tuples starting at first.
func (l *Logger) LogInsert(ctx context.Context, name string, first model.TupleID, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "insert failed",
			"table", name,
			"count", count,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "insert completed",
			"table", name,
			"first", first,
			"count", count,
		)
	}
}

// LogRead logs a read of one tuple.
func (l *Logger) LogRead(ctx context.Context, name string, tid model.TupleID, err error) {
	if err != nil {
		l.WarnContext(ctx, "read failed",
			"table", name,
			"tuple", tid,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "read completed",
			"table", name,
			"tuple", tid,
		)
	}
}

// LogWrite logs an in-place update of one field.
func (l *Logger) LogWrite(ctx context.Context, name string, tid model.TupleID, attr string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "write failed",
			"table", name,
			"tuple", tid,
			"attr", attr,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "write completed",
			"table", name,
			"tuple", tid,
			"attr", attr,
		)
	}
}

// LogDelete logs a delete of count tuples.
func (l *Logger) LogDelete(ctx context.Context, name string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			"table", name,
			"count", count,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "delete completed",
			"table", name,
			"count", count,
		)
	}
}

// LogExport logs a table image export.
func (l *Logger) LogExport(ctx context.Context, name string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "export failed",
			"table", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "table exported",
			"table", name,
			"bytes", bytes,
		)
	}
}

// LogImport logs a table image import.
func (l *Logger) LogImport(ctx context.Context, name string, tuples int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "import failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "table imported",
			"table", name,
			"tuples", tuples,
		)
	}
}
