// Package instrumentation wraps calls to models, vector stores, HTTP
// endpoints and databases in spans and metrics.
//
// Every Trace* helper runs fn exactly once and returns its error unchanged.
// When instrumentation is disabled, fn is called directly.
package instrumentation

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/untrace-dev/untrace-go/attributes"
	"github.com/untrace-dev/untrace-go/core"
	"github.com/untrace-dev/untrace-go/providers"
	"github.com/untrace-dev/untrace-go/telemetry"
	"github.com/untrace-dev/untrace-go/workflow"
)

// DefaultMaxBodySize caps captured request and response bodies.
const DefaultMaxBodySize = 1024 * 1024

// Workflow statuses recorded on workflow spans and metrics.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Config controls what the helpers record.
type Config struct {
	Enabled bool
	// CaptureBody allows CaptureRequestBody and CaptureResponseBody to
	// attach payloads.
	CaptureBody bool
	// CaptureArgs allows CaptureArgs to attach call arguments.
	CaptureArgs bool
	MaxBodySize int
	// CaptureErrors records error events with the message. When false a
	// failed span only gets an error status.
	CaptureErrors bool
}

// DefaultConfig enables everything except argument capture.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		CaptureBody:   true,
		CaptureArgs:   false,
		MaxBodySize:   DefaultMaxBodySize,
		CaptureErrors: true,
	}
}

// ConfigFrom derives the helper config from the SDK config.
// DisableAutoInstrumentation turns the helpers into plain calls.
func ConfigFrom(cfg *core.Config) Config {
	c := DefaultConfig()
	c.Enabled = !cfg.DisableAutoInstrumentation
	c.CaptureBody = cfg.CaptureBody
	c.CaptureErrors = cfg.CaptureErrors
	return c
}

// Instrumentation is the helper set bound to one tracer and metrics facade.
type Instrumentation struct {
	config    Config
	tracer    *telemetry.Tracer
	metrics   *telemetry.Metrics
	workflows *workflow.Context
	providers *providers.Registry
	logger    core.Logger
}

// Option configures an Instrumentation.
type Option func(*Instrumentation)

// WithWorkflows lets TraceWorkflow install the workflow as current.
func WithWorkflows(c *workflow.Context) Option {
	return func(i *Instrumentation) { i.workflows = c }
}

// WithProviders makes TraceLLMCall skip providers disabled in r.
func WithProviders(r *providers.Registry) Option {
	return func(i *Instrumentation) { i.providers = r }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l core.Logger) Option {
	return func(i *Instrumentation) { i.logger = l }
}

// New creates the helper set. metrics may be nil.
func New(cfg Config, tracer *telemetry.Tracer, metrics *telemetry.Metrics, opts ...Option) *Instrumentation {
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultMaxBodySize
	}
	if metrics == nil {
		metrics = telemetry.NewMetrics(nil, nil, nil)
	}
	i := &Instrumentation{
		config:  cfg,
		tracer:  tracer,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.logger = core.OrNoOp(i.logger)
	return i
}

// Config returns the active helper config.
func (i *Instrumentation) Config() Config {
	return i.config
}

// TraceFunction runs fn inside an internal span named name.
func (i *Instrumentation) TraceFunction(ctx context.Context, name string, fn func(context.Context) error, attrs ...attribute.KeyValue) error {
	if !i.config.Enabled {
		return fn(ctx)
	}
	ctx, span := i.tracer.StartSpan(ctx, name, telemetry.SpanOptions{
		Kind:       trace.SpanKindInternal,
		Attributes: keyValuesToMap(attrs),
	})
	defer span.End()

	return i.run(ctx, span, fn, map[string]interface{}{"function": name})
}

// TraceLLMCall runs fn inside an LLM client span. Calls to a provider that
// is registered but disabled run without a span.
func (i *Instrumentation) TraceLLMCall(ctx context.Context, name string, opts telemetry.LLMSpanOptions, fn func(context.Context) error) error {
	_, err := i.TraceLLMResult(ctx, name, opts, func(ctx context.Context) (telemetry.LLMResult, error) {
		return telemetry.LLMResult{}, fn(ctx)
	})
	return err
}

// TraceLLMResult is TraceLLMCall for calls that report usage. Token counts
// and cost found in the result are set on the span and recorded as metrics.
func (i *Instrumentation) TraceLLMResult(ctx context.Context, name string, opts telemetry.LLMSpanOptions, fn func(context.Context) (telemetry.LLMResult, error)) (telemetry.LLMResult, error) {
	if !i.config.Enabled || !i.providerEnabled(opts.Provider) {
		return fn(ctx)
	}

	ctx, span := i.tracer.StartLLMSpan(ctx, name, opts)
	defer span.End()

	start := time.Now()
	res, err := fn(ctx)
	elapsed := time.Since(start)

	labels := map[string]interface{}{
		attributes.LLMProvider:  opts.Provider,
		attributes.LLMModel:     opts.Model,
		attributes.LLMOperation: string(opts.Operation),
	}
	i.metrics.RecordLatency(ctx, elapsed, labels)

	res.Duration = elapsed
	res.Err = err
	res.RedactError = !i.config.CaptureErrors
	telemetry.RecordLLMResult(span, res)
	if err != nil {
		i.metrics.RecordError(ctx, err, labels)
	}

	if res.Usage != nil {
		usage := *res.Usage
		usage.Provider, usage.Model = withDefault(usage.Provider, opts.Provider), withDefault(usage.Model, opts.Model)
		i.metrics.RecordTokenUsage(ctx, usage)
	}
	if res.Cost != nil {
		cost := *res.Cost
		cost.Provider, cost.Model = withDefault(cost.Provider, opts.Provider), withDefault(cost.Model, opts.Model)
		i.metrics.RecordCost(ctx, cost)
	}
	return res, err
}

// TraceVectorDBQuery runs fn inside a vector database client span.
func (i *Instrumentation) TraceVectorDBQuery(ctx context.Context, opts telemetry.VectorDBSpanOptions, fn func(context.Context) error) error {
	if !i.config.Enabled {
		return fn(ctx)
	}
	ctx, span := i.tracer.StartVectorDBSpan(ctx, "", opts)
	defer span.End()

	return i.run(ctx, span, fn, map[string]interface{}{
		attributes.VectorDBProvider:  opts.Provider,
		attributes.VectorDBOperation: opts.Operation,
	})
}

// TraceHTTPRequest runs fn inside an HTTP client span. Credentials in
// rawURL are redacted before it is recorded.
func (i *Instrumentation) TraceHTTPRequest(ctx context.Context, method, rawURL string, fn func(context.Context) error) error {
	if !i.config.Enabled {
		return fn(ctx)
	}
	method = strings.ToUpper(method)
	target := redactURL(rawURL)

	attrs := map[string]interface{}{
		string(semconv.HTTPRequestMethodKey): method,
		string(semconv.URLFullKey):           target,
	}
	ctx, span := i.tracer.StartSpan(ctx, method+" "+spanPath(rawURL), telemetry.SpanOptions{
		Kind:       trace.SpanKindClient,
		Attributes: attrs,
	})
	defer span.End()

	return i.run(ctx, span, fn, attrs)
}

// TraceDatabaseQuery runs fn inside a database client span named
// "db.<operation>".
func (i *Instrumentation) TraceDatabaseQuery(ctx context.Context, operation, table string, fn func(context.Context) error) error {
	if !i.config.Enabled {
		return fn(ctx)
	}
	attrs := map[string]interface{}{
		string(semconv.DBOperationKey): operation,
		string(semconv.DBSQLTableKey):  table,
	}
	ctx, span := i.tracer.StartSpan(ctx, "db."+operation, telemetry.SpanOptions{
		Kind:       trace.SpanKindClient,
		Attributes: attrs,
	})
	defer span.End()

	return i.run(ctx, span, fn, attrs)
}

// TraceWorkflow starts a workflow, runs fn inside its root span and ends it.
// The workflow is carried on the ctx passed to fn and, when a workflow
// context is configured, becomes the current workflow for the duration.
func (i *Instrumentation) TraceWorkflow(ctx context.Context, name, runID string, opts workflow.Options, fn func(context.Context) error) error {
	if !i.config.Enabled {
		return fn(ctx)
	}

	var w workflow.Workflow
	if i.workflows != nil {
		w = i.workflows.StartWorkflow(name, runID, opts)
	} else {
		w = workflow.New(name, runID, opts)
	}
	ctx, span := i.tracer.StartWorkflowSpan(ctx, w)
	defer span.End()

	i.metrics.WorkflowStarted(ctx, w.Name)
	err := fn(ctx)
	i.metrics.WorkflowEnded(ctx, w.Name)

	status := StatusCompleted
	if err != nil {
		status = StatusFailed
		i.recordError(span, err)
		span.SetAttributes(attribute.String(attributes.WorkflowErrorType, telemetry.ErrorType(err)))
		if i.config.CaptureErrors {
			span.SetAttributes(attribute.String(attributes.WorkflowError, err.Error()))
		}
		i.metrics.RecordError(ctx, err, map[string]interface{}{attributes.WorkflowName: w.Name})
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(
		attribute.String(attributes.WorkflowStatus, status),
		attribute.Int64(attributes.WorkflowDurationMs, w.Duration().Milliseconds()),
	)
	i.metrics.RecordWorkflowDuration(ctx, w, status)

	i.endWorkflow(w)
	return err
}

// endWorkflow ends w if it is still the current workflow; fn may have
// replaced it.
func (i *Instrumentation) endWorkflow(w workflow.Workflow) {
	if i.workflows == nil {
		return
	}
	if cur, ok := i.workflows.CurrentWorkflow(); ok && cur.ID == w.ID {
		i.workflows.EndCurrentWorkflow()
		return
	}
	i.logger.Debug("Workflow replaced before it finished", map[string]interface{}{
		"operation":   "trace_workflow",
		"workflow_id": w.ID,
	})
}

// CaptureRequestBody attaches body to the span in ctx as llm.request.body,
// truncated to MaxBodySize. It does nothing unless CaptureBody is set.
func (i *Instrumentation) CaptureRequestBody(ctx context.Context, body string) {
	i.captureBody(ctx, attributes.LLMRequestBody, body)
}

// CaptureResponseBody is CaptureRequestBody for llm.response.body.
func (i *Instrumentation) CaptureResponseBody(ctx context.Context, body string) {
	i.captureBody(ctx, attributes.LLMResponseBody, body)
}

func (i *Instrumentation) captureBody(ctx context.Context, key, body string) {
	if !i.config.Enabled || !i.config.CaptureBody || body == "" {
		return
	}
	telemetry.SetSpanAttributes(ctx, attribute.String(key, i.TruncateBody(body)))
}

// CaptureArgs attaches args to the span in ctx as function.args. It does
// nothing unless CaptureArgs is set.
func (i *Instrumentation) CaptureArgs(ctx context.Context, args ...interface{}) {
	if !i.config.Enabled || !i.config.CaptureArgs || len(args) == 0 {
		return
	}
	values := make([]string, len(args))
	for n, a := range args {
		values[n] = TruncateString(SafeString(a), i.config.MaxBodySize)
	}
	telemetry.SetSpanAttributes(ctx, attribute.StringSlice("function.args", values))
}

// TruncateBody keeps the first MaxBodySize bytes of body and marks a cut with
// "...", which is not counted against the limit.
func (i *Instrumentation) TruncateBody(body string) string {
	return TruncateString(body, i.config.MaxBodySize)
}

func (i *Instrumentation) run(ctx context.Context, span trace.Span, fn func(context.Context) error, labels map[string]interface{}) error {
	start := time.Now()
	err := fn(ctx)
	i.metrics.RecordLatency(ctx, time.Since(start), labels)

	if err != nil {
		i.recordError(span, err)
		i.metrics.RecordError(ctx, err, labels)
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func (i *Instrumentation) recordError(span trace.Span, err error) {
	if i.config.CaptureErrors {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Error, "")
}

func (i *Instrumentation) providerEnabled(name string) bool {
	if i.providers == nil || name == "" {
		return true
	}
	if _, ok := i.providers.Get(name); !ok {
		return true
	}
	return i.providers.IsEnabled(name)
}

func keyValuesToMap(attrs []attribute.KeyValue) map[string]interface{} {
	if len(attrs) == 0 {
		return nil
	}
	m := make(map[string]interface{}, len(attrs))
	for _, kv := range attrs {
		m[string(kv.Key)] = kv.Value.AsInterface()
	}
	return m
}

func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Redacted()
}

func spanPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("%s%s", u.Host, path)
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
