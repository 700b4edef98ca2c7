package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const transportTracerName = "agentprobe-transport"

func transportTracer() trace.Tracer {
	return Tracer(transportTracerName)
}

// TraceHTTPRequest starts a span for an HTTP call to the Agent Mode service.
// Caller must call span.End() when the response is received.
func TraceHTTPRequest(ctx context.Context, method, path string) (context.Context, trace.Span) {
	ctx, span := transportTracer().Start(ctx, "http."+method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	)
	return ctx, span
}

// TraceHTTPResponse records response attributes on the span.
func TraceHTTPResponse(span trace.Span, statusCode int, err error) {
	span.SetAttributes(attribute.Int("http.status_code", statusCode))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// TraceProbe starts a span covering one probe step.
// Caller must call span.End() once the verdict is recorded.
func TraceProbe(ctx context.Context, name string) (context.Context, trace.Span) {
	ctx, span := transportTracer().Start(ctx, "probe."+name,
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	span.SetAttributes(attribute.String("probe", name))
	return ctx, span
}

// TraceProbeVerdict records the probe outcome on the span.
func TraceProbeVerdict(span trace.Span, outcome, message string) {
	span.SetAttributes(
		attribute.String("probe.outcome", outcome),
		attribute.String("probe.message", message),
	)
	if outcome == "FAIL" {
		span.SetStatus(codes.Error, message)
	}
}
