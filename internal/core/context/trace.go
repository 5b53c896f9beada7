// Package context carries request-scoped tracing identifiers across
// layer boundaries, so a ledger write can be tied back to the HTTP
// request that caused it.
package context

import (
	"context"
)

// TraceContext identifies one request through the middleware, services
// and storage layers.
type TraceContext struct {
	TraceID   string
	SpanID    string
	RequestID string
}

type traceContextKey struct{}

// WithTrace stores the trace in the context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns the trace from the context, or nil outside a request.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}
