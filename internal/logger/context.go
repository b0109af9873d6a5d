package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// ContextWithLogger stores a logger in the context.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the request logger, or a no-op logger when none is set.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithSession tags the context logger with the conversation session.
// The anonymous session leaves ctx untouched.
func WithSession(ctx context.Context, sessionID string) (context.Context, *zap.Logger) {
	l := FromContext(ctx)
	if sessionID == "" {
		return ctx, l
	}
	l = l.With(zap.String("session_id", sessionID))
	return ContextWithLogger(ctx, l), l
}
