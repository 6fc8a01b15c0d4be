package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/untrace-dev/untrace-go/attributes"
	"github.com/untrace-dev/untrace-go/workflow"
)

// TraceContext holds trace and span identifiers for log correlation.
type TraceContext struct {
	// TraceID is the 32-character hex trace identifier.
	TraceID string
	// SpanID is the 16-character hex span identifier.
	SpanID  string
	Sampled bool
}

// GetTraceContext extracts the identifiers of the span in ctx. The zero
// value is returned when there is none.
func GetTraceContext(ctx context.Context) TraceContext {
	if ctx == nil {
		return TraceContext{}
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return TraceContext{}
	}
	return TraceContext{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
		Sampled: sc.IsSampled(),
	}
}

// HasTraceContext reports whether ctx carries a valid span context.
func HasTraceContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	return trace.SpanContextFromContext(ctx).IsValid()
}

// LogFields returns trace_id, span_id and, when a workflow is carried by
// ctx, its id and run id, ready to merge into a Logger field map.
//
//	logger.Info("Calling model", telemetry.LogFields(ctx))
func LogFields(ctx context.Context) map[string]interface{} {
	fields := make(map[string]interface{})
	if tc := GetTraceContext(ctx); tc.TraceID != "" {
		fields["trace_id"] = tc.TraceID
		fields["span_id"] = tc.SpanID
	}
	if ctx == nil {
		return fields
	}
	if w, ok := workflow.FromContext(ctx); ok {
		fields[attributes.WorkflowID] = w.ID
		fields[attributes.WorkflowRunID] = w.RunID
	}
	return fields
}

// AddSpanEvent adds a named event to the span in ctx, if it is recording.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent(name, trace.WithAttributes(attrs...))
	}
}

// RecordSpanError records err on the span in ctx and marks it failed.
// Nil errors are ignored.
func RecordSpanError(ctx context.Context, err error) {
	if ctx == nil || err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanAttributes adds attributes to the span in ctx as given. Use
// SetSanitizedAttributes for values that may hold user data.
func SetSpanAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attrs...)
	}
}

// SetSanitizedAttributes redacts sensitive keys in attrs and adds the rest
// to the span in ctx.
func SetSanitizedAttributes(ctx context.Context, attrs map[string]interface{}) {
	if len(attrs) == 0 {
		return
	}
	SetSpanAttributes(ctx, attributes.FromMap(attributes.Sanitize(attrs))...)
}

// SetSpanStatus sets the status of the span in ctx.
func SetSpanStatus(ctx context.Context, code codes.Code, description string) {
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetStatus(code, description)
	}
}
