package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/untrace-dev/untrace-go/attributes"
	"github.com/untrace-dev/untrace-go/core"
	"github.com/untrace-dev/untrace-go/workflow"
)

func newTestTracer(t *testing.T, workflows *workflow.Context) (*Tracer, *tracetest.SpanRecorder, *Health) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	health := NewHealth()
	return NewTracer(tp.Tracer("test"), workflows, health), rec, health
}

func attrMap(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestStartLLMSpan(t *testing.T) {
	tracer, rec, health := newTestTracer(t, nil)

	_, span := tracer.StartLLMSpan(context.Background(), "", LLMSpanOptions{
		Provider:     "openai",
		Model:        "gpt-4",
		Operation:    OperationChat,
		PromptTokens: Ptr(100),
		Temperature:  Ptr(0.2),
		Stream:       Ptr(false),
		Attributes: map[string]interface{}{
			"api_key": "sk-123",
			"team":    "search",
		},
	})
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	got := spans[0]
	assert.Equal(t, "openai.chat", got.Name())
	assert.Equal(t, trace.SpanKindClient, got.SpanKind())

	attrs := attrMap(got)
	assert.Equal(t, "openai", attrs[attributes.LLMProvider].AsString())
	assert.Equal(t, "gpt-4", attrs[attributes.LLMModel].AsString())
	assert.Equal(t, "chat", attrs[attributes.LLMOperation].AsString())
	assert.Equal(t, int64(100), attrs[attributes.LLMPromptTokens].AsInt64())
	assert.Equal(t, 0.2, attrs[attributes.LLMTemperature].AsFloat64())
	assert.False(t, attrs[attributes.LLMStream].AsBool())
	assert.Equal(t, attributes.Redacted, attrs["api_key"].AsString())
	assert.Equal(t, "search", attrs["team"].AsString())

	_, hasCompletion := attrs[attributes.LLMCompletionTokens]
	assert.False(t, hasCompletion, "unset options must not produce attributes")
	assert.Equal(t, int64(1), health.Snapshot().SpansStarted)
}

func TestStartLLMSpanExplicitName(t *testing.T) {
	tracer, rec, _ := newTestTracer(t, nil)
	_, span := tracer.StartLLMSpan(context.Background(), "summarize", LLMSpanOptions{Provider: "anthropic"})
	span.End()
	require.Len(t, rec.Ended(), 1)
	assert.Equal(t, "summarize", rec.Ended()[0].Name())
}

func TestOptionKeyValuesSanitizeCustomAttributes(t *testing.T) {
	tracer, rec, _ := newTestTracer(t, nil)
	dims := 1536

	_, llm := tracer.StartLLMSpan(context.Background(), "", LLMSpanOptions{
		Provider:   "openai",
		Model:      "gpt-4o",
		Operation:  OperationChat,
		Attributes: map[string]interface{}{"customer": "acme", "auth_token": "t-123"},
	})
	llm.End()
	_, vec := tracer.StartVectorDBSpan(context.Background(), "", VectorDBSpanOptions{
		Provider:   "pinecone",
		Operation:  "query",
		Dimensions: &dims,
		Attributes: map[string]interface{}{"index_secret": "s-456"},
	})
	vec.End()

	spans := rec.Ended()
	require.Len(t, spans, 2)

	llmAttrs := attrMap(spans[0])
	assert.Equal(t, "openai", llmAttrs[attributes.LLMProvider].AsString())
	assert.Equal(t, "acme", llmAttrs["customer"].AsString())
	assert.Equal(t, attributes.Redacted, llmAttrs["auth_token"].AsString())

	vecAttrs := attrMap(spans[1])
	assert.Equal(t, int64(1536), vecAttrs[attributes.VectorDBDimensions].AsInt64())
	assert.Equal(t, attributes.Redacted, vecAttrs["index_secret"].AsString())
}

func TestSpansCarryCurrentWorkflow(t *testing.T) {
	workflows := workflow.NewContext(nil)
	w := workflows.StartWorkflow("checkout", "run-1", workflow.Options{UserID: "u1"})
	tracer, rec, _ := newTestTracer(t, workflows)

	_, span := tracer.StartLLMSpan(context.Background(), "", LLMSpanOptions{Provider: "openai", Operation: OperationCompletion})
	span.End()
	_, span = tracer.StartVectorDBSpan(context.Background(), "", VectorDBSpanOptions{Provider: "pinecone", Operation: "query", ResultCount: Ptr(3)})
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 2)
	for _, s := range spans {
		attrs := attrMap(s)
		assert.Equal(t, w.ID, attrs[attributes.WorkflowID].AsString(), s.Name())
		assert.Equal(t, "checkout", attrs[attributes.WorkflowName].AsString(), s.Name())
		assert.Equal(t, "run-1", attrs[attributes.WorkflowRunID].AsString(), s.Name())
	}
	assert.Equal(t, "vector_db.query", spans[1].Name())
	assert.Equal(t, int64(3), attrMap(spans[1])[attributes.VectorDBResultCount].AsInt64())
}

func TestContextWorkflowWinsOverCurrent(t *testing.T) {
	workflows := workflow.NewContext(nil)
	workflows.StartWorkflow("global", "run-global", workflow.Options{})
	tracer, rec, _ := newTestTracer(t, workflows)

	local := workflow.New("local", "run-local", workflow.Options{})
	ctx := workflow.WithWorkflow(context.Background(), local)
	_, span := tracer.StartSpan(ctx, "step", SpanOptions{})
	span.End()

	attrs := attrMap(rec.Ended()[0])
	assert.Equal(t, "local", attrs[attributes.WorkflowName].AsString())
	assert.Equal(t, "run-local", attrs[attributes.WorkflowRunID].AsString())
}

func TestStartSpanParentAndLinks(t *testing.T) {
	tracer, rec, _ := newTestTracer(t, nil)

	_, parent := tracer.StartSpan(context.Background(), "parent", SpanOptions{})
	_, other := tracer.StartSpan(context.Background(), "other", SpanOptions{})
	parent.End()
	other.End()

	_, child := tracer.StartSpan(context.Background(), "child", SpanOptions{
		Kind:       trace.SpanKindProducer,
		Parent:     parent.SpanContext(),
		Attributes: map[string]interface{}{"queue": "jobs"},
		Links:      []trace.Link{{SpanContext: other.SpanContext()}},
	})
	child.End()

	spans := rec.Ended()
	require.Len(t, spans, 3)
	got := spans[2]
	assert.Equal(t, parent.SpanContext().TraceID(), got.SpanContext().TraceID())
	assert.Equal(t, parent.SpanContext().SpanID(), got.Parent().SpanID())
	assert.Equal(t, trace.SpanKindProducer, got.SpanKind())
	require.Len(t, got.Links(), 1)
	assert.Equal(t, other.SpanContext().SpanID(), got.Links()[0].SpanContext.SpanID())
	assert.Equal(t, "jobs", attrMap(got)["queue"].AsString())
}

func TestStartWorkflowSpan(t *testing.T) {
	tracer, rec, _ := newTestTracer(t, nil)
	w := workflow.New("ingest", "run-9", workflow.Options{
		UserID:   "u1",
		Version:  "v2",
		Metadata: map[string]string{"tenant": "acme", "api_key": "sk-secret"},
	})

	ctx, span := tracer.StartWorkflowSpan(context.Background(), w)
	_, child := tracer.StartSpan(ctx, "load", SpanOptions{})
	child.End()
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 2)
	root := spans[1]
	assert.Equal(t, "workflow.ingest", root.Name())
	assert.Equal(t, w.StartTime, root.StartTime())

	attrs := attrMap(root)
	assert.Equal(t, w.ID, attrs[attributes.WorkflowID].AsString())
	assert.Equal(t, "u1", attrs[attributes.WorkflowUserID].AsString())
	assert.Equal(t, "v2", attrs[attributes.WorkflowVersion].AsString())
	assert.Equal(t, "acme", attrs[attribute.Key(attributes.MetadataKey("tenant"))].AsString())
	assert.Equal(t, attributes.Redacted, attrs[attribute.Key(attributes.MetadataKey("api_key"))].AsString())

	childAttrs := attrMap(spans[0])
	assert.Equal(t, w.ID, childAttrs[attributes.WorkflowID].AsString())
	assert.Equal(t, root.SpanContext().SpanID(), spans[0].Parent().SpanID())
}

func TestRecordLLMResult(t *testing.T) {
	tracer, rec, _ := newTestTracer(t, nil)

	_, span := tracer.StartLLMSpan(context.Background(), "", LLMSpanOptions{Provider: "openai"})
	RecordLLMResult(span, LLMResult{
		Usage:     &TokenUsage{PromptTokens: 10, CompletionTokens: 5},
		Cost:      &Cost{Prompt: 0.01, Completion: 0.02},
		RequestID: "req-1",
		Reason:    "stop",
	})
	span.End()

	_, failed := tracer.StartLLMSpan(context.Background(), "", LLMSpanOptions{Provider: "openai"})
	RecordLLMResult(failed, LLMResult{Err: &core.Error{Op: "call", Kind: core.KindExport, Err: errors.New("timeout")}})
	failed.End()

	spans := rec.Ended()
	require.Len(t, spans, 2)

	ok := attrMap(spans[0])
	assert.Equal(t, int64(15), ok[attributes.LLMTotalTokens].AsInt64())
	assert.InDelta(t, 0.03, ok[attributes.LLMCostTotal].AsFloat64(), 1e-9)
	assert.Equal(t, "req-1", ok[attributes.LLMRequestID].AsString())
	assert.Equal(t, "stop", ok[attributes.LLMUsageReason].AsString())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)

	bad := attrMap(spans[1])
	assert.Equal(t, core.KindExport, bad[attributes.LLMErrorType].AsString())
	assert.Contains(t, bad[attributes.LLMError].AsString(), "timeout")
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	require.NotEmpty(t, spans[1].Events())
	assert.Equal(t, "exception", spans[1].Events()[0].Name)
}

func TestRecordLLMResultNonRecording(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordLLMResult(trace.SpanFromContext(context.Background()), LLMResult{Err: errors.New("x")})
	})
}
