package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// PipelineKey is the context key for the pipeline name (item, lists,
	// related, submit).
	PipelineKey contextKey = "pipeline"

	// ItemIDKey is the context key for the record identifier being resolved.
	ItemIDKey contextKey = "item_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithPipeline adds a pipeline name to the context.
func WithPipeline(ctx context.Context, pipeline string) context.Context {
	return context.WithValue(ctx, PipelineKey, pipeline)
}

// GetPipeline retrieves the pipeline name from the context.
func GetPipeline(ctx context.Context) string {
	if pipeline, ok := ctx.Value(PipelineKey).(string); ok {
		return pipeline
	}
	return ""
}

// WithItemID adds a record identifier to the context.
func WithItemID(ctx context.Context, itemID string) context.Context {
	return context.WithValue(ctx, ItemIDKey, itemID)
}

// GetItemID retrieves the record identifier from the context.
func GetItemID(ctx context.Context) string {
	if itemID, ok := ctx.Value(ItemIDKey).(string); ok {
		return itemID
	}
	return ""
}

// contextAttrs extracts the request-scoped fields present in ctx.
func contextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}

	var attrs []slog.Attr
	if v := GetRequestID(ctx); v != "" {
		attrs = append(attrs, slog.String(string(RequestIDKey), v))
	}
	if v := GetPipeline(ctx); v != "" {
		attrs = append(attrs, slog.String(string(PipelineKey), v))
	}
	if v := GetItemID(ctx); v != "" {
		attrs = append(attrs, slog.String(string(ItemIDKey), v))
	}
	return attrs
}
