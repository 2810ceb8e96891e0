package logging

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// contextKey is a type for context keys used by this package.
type contextKey int

const (
	sessionIDKey contextKey = iota
)

// GenerateSessionID creates a new editing session ID.
// Format: first 8 hex characters of a random UUID.
func GenerateSessionID() string {
	return uuid.NewString()[:8]
}

// WithSessionID returns a new context with the given session ID.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// NewSessionContext creates a new context with a generated session ID.
func NewSessionContext() context.Context {
	return WithSessionID(context.Background(), GenerateSessionID())
}

// SessionIDFromContext extracts the session ID from the context.
// Returns empty string if no session ID is set.
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}

// LoggerFromContext returns a logger with the session ID from context.
// If no session ID is in the context, returns the default logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger := Logger()
	if sessionID := SessionIDFromContext(ctx); sessionID != "" {
		logger = logger.With(KeySessionID, sessionID)
	}
	return logger
}

// ContextLogger is a helper for logging with context.
type ContextLogger struct {
	ctx    context.Context
	logger *slog.Logger
}

// FromContext creates a ContextLogger from a context.
func FromContext(ctx context.Context) *ContextLogger {
	return &ContextLogger{
		ctx:    ctx,
		logger: LoggerFromContext(ctx),
	}
}

// NewContextLogger creates a ContextLogger over l, tagged with the
// context's session ID.
func NewContextLogger(ctx context.Context, l *slog.Logger) *ContextLogger {
	if sessionID := SessionIDFromContext(ctx); sessionID != "" {
		l = l.With(KeySessionID, sessionID)
	}
	return &ContextLogger{ctx: ctx, logger: l}
}

// With returns a new ContextLogger with additional attributes.
func (cl *ContextLogger) With(args ...any) *ContextLogger {
	return &ContextLogger{
		ctx:    cl.ctx,
		logger: cl.logger.With(args...),
	}
}

// Slog returns the underlying slog logger.
func (cl *ContextLogger) Slog() *slog.Logger {
	return cl.logger
}

// Info logs at INFO level.
func (cl *ContextLogger) Info(msg string, args ...any) {
	cl.logger.InfoContext(cl.ctx, msg, args...)
}

// Debug logs at DEBUG level.
func (cl *ContextLogger) Debug(msg string, args ...any) {
	cl.logger.DebugContext(cl.ctx, msg, args...)
}

// Warn logs at WARN level.
func (cl *ContextLogger) Warn(msg string, args ...any) {
	cl.logger.WarnContext(cl.ctx, msg, args...)
}

// Error logs at ERROR level.
func (cl *ContextLogger) Error(msg string, args ...any) {
	cl.logger.ErrorContext(cl.ctx, msg, args...)
}

// SessionID returns the session ID from the logger's context.
func (cl *ContextLogger) SessionID() string {
	return SessionIDFromContext(cl.ctx)
}
