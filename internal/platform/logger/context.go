package logger

import (
	"context"
	"log/slog"
)

// loggerContextKey is the private context key for the request-scoped logger.
type loggerContextKey struct{}

// WithLogger returns a context carrying the given logger. Handlers and
// middleware use this to thread request-scoped attributes (trace IDs,
// user IDs) through the call stack.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, log)
}

// FromContext retrieves the logger from the context, falling back to the
// process default logger when none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return slog.Default()
}

// FromContextOrDefault retrieves the logger from the context, falling back
// to the provided logger (rather than the process default) when none was
// attached. Components hold their own .With-scoped logger and pass it here.
func FromContextOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if log, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	if fallback != nil {
		return fallback
	}
	return slog.Default()
}
