// Package otel provides OpenTelemetry instrumentation utilities for gem-sources.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope used by the CLI
const TracerName = "github.com/stacklok/gem-sources"

// Common attribute keys for business context used across the application.
// Using shared keys ensures consistent attribute naming in traces.
const (
	AttrSourceURL       = attribute.Key("source.url")
	AttrSourceCount     = attribute.Key("source.count")
	AttrActiveCount     = attribute.Key("source.active_count")
	AttrInactiveCount   = attribute.Key("source.inactive_count")
	AttrSyncAddCount    = attribute.Key("sync.add_count")
	AttrSyncRemoveCount = attribute.Key("sync.remove_count")
	AttrSyncOperation   = attribute.Key("sync.operation")
)

// StartSpan starts a new span if the tracer is non-nil, otherwise returns a no-op span.
// This provides graceful degradation when tracing is disabled.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError records an error on a span and sets the span status to error.
// It safely handles nil spans and nil errors.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}
