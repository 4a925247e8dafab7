package common

import (
	"context"
)

// Context keys for values carried across pipeline stages.
type contextKey string

const (
	ContextKeyRequestID contextKey = "request_id"
)

// WithRequestID adds the claim correlation id to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the correlation id from context.
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}
