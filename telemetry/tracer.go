package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/untrace-dev/untrace-go/attributes"
	"github.com/untrace-dev/untrace-go/workflow"
)

// Tracer starts spans carrying the SDK's attribute families. Spans started
// while a workflow is active (on ctx or in the workflow context) also get
// the workflow's id, name and run id.
type Tracer struct {
	tracer    trace.Tracer
	workflows *workflow.Context
	health    *Health
}

// NewTracer wraps an OpenTelemetry tracer. workflows and health may be nil.
func NewTracer(t trace.Tracer, workflows *workflow.Context, health *Health) *Tracer {
	if health == nil {
		health = NewHealth()
	}
	return &Tracer{tracer: t, workflows: workflows, health: health}
}

// OTel returns the underlying tracer for spans the helpers do not cover.
func (t *Tracer) OTel() trace.Tracer {
	return t.tracer
}

// StartLLMSpan starts a client span for a model call. An empty name
// defaults to "<provider>.<operation>".
func (t *Tracer) StartLLMSpan(ctx context.Context, name string, opts LLMSpanOptions) (context.Context, trace.Span) {
	if name == "" {
		name = llmSpanName(opts)
	}
	attrs := append(opts.KeyValues(), t.workflowAttributes(ctx)...)
	return t.start(ctx, name, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
}

// StartVectorDBSpan starts a client span for a vector database call.
func (t *Tracer) StartVectorDBSpan(ctx context.Context, name string, opts VectorDBSpanOptions) (context.Context, trace.Span) {
	if name == "" {
		name = "vector_db." + opts.Operation
	}
	attrs := append(opts.KeyValues(), t.workflowAttributes(ctx)...)
	return t.start(ctx, name, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
}

// StartSpan starts a generic span. A valid opts.Parent overrides the span
// already in ctx.
func (t *Tracer) StartSpan(ctx context.Context, name string, opts SpanOptions) (context.Context, trace.Span) {
	if opts.Parent.IsValid() {
		ctx = trace.ContextWithSpanContext(ctx, opts.Parent)
	}
	attrs := append(attributes.FromMap(attributes.Sanitize(opts.Attributes)), t.workflowAttributes(ctx)...)

	startOpts := []trace.SpanStartOption{
		trace.WithSpanKind(opts.Kind),
		trace.WithAttributes(attrs...),
	}
	if len(opts.Links) > 0 {
		startOpts = append(startOpts, trace.WithLinks(opts.Links...))
	}
	return t.start(ctx, name, startOpts...)
}

// StartWorkflowSpan starts the root span of a workflow, carrying every
// workflow attribute including workflow.metadata.<key> entries.
func (t *Tracer) StartWorkflowSpan(ctx context.Context, w workflow.Workflow) (context.Context, trace.Span) {
	ctx = workflow.WithWorkflow(ctx, w)
	return t.start(ctx, "workflow."+w.Name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(w.StartTime),
		trace.WithAttributes(w.Attributes()...),
	)
}

func (t *Tracer) start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	t.health.spanStarted()
	return t.tracer.Start(ctx, name, opts...)
}

func (t *Tracer) workflowAttributes(ctx context.Context) []attribute.KeyValue {
	w, ok := t.workflows.Resolve(ctx)
	if !ok {
		return nil
	}
	return w.IdentityAttributes()
}

func llmSpanName(opts LLMSpanOptions) string {
	provider := opts.Provider
	if provider == "" {
		provider = "llm"
	}
	if opts.Operation == "" {
		return provider
	}
	return provider + "." + string(opts.Operation)
}

// LLMResult is what an LLM call produced, for RecordLLMResult.
type LLMResult struct {
	Usage     *TokenUsage
	Cost      *Cost
	RequestID string
	Reason    string
	Duration  time.Duration
	Err       error
	// RedactError keeps the error message off the span; only the error
	// type and status are recorded.
	RedactError bool
}

// RecordLLMResult sets the outcome attributes of an LLM span and its status.
// It does not end the span.
func RecordLLMResult(span trace.Span, res LLMResult) {
	if !span.IsRecording() {
		return
	}
	var attrs []attribute.KeyValue
	if u := res.Usage; u != nil {
		attrs = append(attrs,
			attribute.Int(attributes.LLMPromptTokens, u.PromptTokens),
			attribute.Int(attributes.LLMCompletionTokens, u.CompletionTokens),
			attribute.Int(attributes.LLMTotalTokens, u.Total()),
		)
	}
	if c := res.Cost; c != nil {
		total := c.Total
		if total == 0 {
			total = c.Prompt + c.Completion
		}
		attrs = append(attrs,
			attribute.Float64(attributes.LLMCostPrompt, c.Prompt),
			attribute.Float64(attributes.LLMCostCompletion, c.Completion),
			attribute.Float64(attributes.LLMCostTotal, total),
		)
	}
	if res.RequestID != "" {
		attrs = append(attrs, attribute.String(attributes.LLMRequestID, res.RequestID))
	}
	if res.Reason != "" {
		attrs = append(attrs, attribute.String(attributes.LLMUsageReason, res.Reason))
	}
	if res.Duration > 0 {
		attrs = append(attrs, attribute.Int64(attributes.LLMDurationMs, res.Duration.Milliseconds()))
	}
	switch {
	case res.Err != nil && res.RedactError:
		attrs = append(attrs, attribute.String(attributes.LLMErrorType, ErrorType(res.Err)))
		span.SetStatus(codes.Error, "")
	case res.Err != nil:
		attrs = append(attrs,
			attribute.String(attributes.LLMError, res.Err.Error()),
			attribute.String(attributes.LLMErrorType, ErrorType(res.Err)),
		)
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(attrs...)
}
