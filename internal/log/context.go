package log

import (
	"context"
	"log/slog"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// WithLogger returns a copy of ctx carrying logger
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from the context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogFileError logs a failure tied to a single tuition file
func (sl *StructuredLogger) LogFileError(ctx context.Context, stage, file string, err error) {
	fields := NewFields().
		WithFile(file, stage).
		WithError(err).
		WithOperation(OpParse).
		WithComponent(ComponentTuition)

	sl.logger.ErrorContext(ctx, "Tuition file rejected", fields.ToSlice()...)
}

// LogNoteIssued logs a generated debit note
func (sl *StructuredLogger) LogNoteIssued(ctx context.Context, id, student, course string, pages int, total int64, path string) {
	fields := NewFields().
		WithNote(student, course, pages, total).
		WithOperation(OpRender).
		WithComponent(ComponentNotes).
		ToSlice()

	fields = append(fields, FieldNoteID, id, FieldPath, path)

	sl.logger.InfoContext(ctx, "Debit note issued", fields...)
}
