package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type (
	loggerKey struct{}
	eventKey  struct{}
)

// event collects fields for the canonical per-request log line.
type event struct {
	mu     sync.Mutex
	fields []zap.Field
}

// ContextWithLogger stores a logger in the context.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext extracts a logger from the context.
// Returns zap.NewNop() if no logger is found.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithEvent starts an empty canonical log line for one request.
func WithEvent(ctx context.Context) context.Context {
	return context.WithValue(ctx, eventKey{}, &event{})
}

// AddFields appends fields to the request's canonical log line.
// Without WithEvent the fields are dropped.
func AddFields(ctx context.Context, fields ...zap.Field) {
	e, ok := ctx.Value(eventKey{}).(*event)
	if !ok {
		return
	}
	e.mu.Lock()
	e.fields = append(e.fields, fields...)
	e.mu.Unlock()
}

// EventFields returns a copy of the fields added so far.
func EventFields(ctx context.Context) []zap.Field {
	e, ok := ctx.Value(eventKey{}).(*event)
	if !ok {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]zap.Field(nil), e.fields...)
}
