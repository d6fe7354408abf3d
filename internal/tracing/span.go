package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/probekit/probekit/internal/dispatch"
)

// SpanTracer adapts an OpenTelemetry tracer to the dispatch.Tracer boundary.
// Each traced dispatch maps to one client span; the span itself serves as the
// opaque trace handle.
type SpanTracer struct {
	tracer trace.Tracer
}

func NewSpanTracer(t trace.Tracer) *SpanTracer {
	return &SpanTracer{tracer: t}
}

// StartTrace opens a client span named after the request's dynamic type.
func (s *SpanTracer) StartTrace(ctx context.Context, request any) dispatch.TraceHandle {
	_, span := s.tracer.Start(ctx, spanName(request),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String("probekit.request_type", fmt.Sprintf("%T", request)),
	)
	return span
}

// RecordException records the dispatch error on the span.
func (s *SpanTracer) RecordException(handle dispatch.TraceHandle, err error) {
	span, ok := handle.(trace.Span)
	if !ok || err == nil {
		return
	}
	span.RecordError(err)
}

// CompleteTrace sets the final span status and ends it.
func (s *SpanTracer) CompleteTrace(handle dispatch.TraceHandle, success bool) {
	span, ok := handle.(trace.Span)
	if !ok {
		return
	}
	if success {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, "dispatch failed")
	}
	span.End()
}

func spanName(request any) string {
	if request == nil {
		return "dispatch"
	}
	return fmt.Sprintf("dispatch %T", request)
}
