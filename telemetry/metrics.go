package telemetry

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/untrace-dev/untrace-go/attributes"
	"github.com/untrace-dev/untrace-go/core"
	"github.com/untrace-dev/untrace-go/workflow"
)

// Metric names
const (
	MetricPromptTokens     = "llm.prompt.tokens"
	MetricCompletionTokens = "llm.completion.tokens"
	MetricTotalTokens      = "llm.total.tokens"
	MetricLatency          = "llm.latency"
	MetricErrors           = "llm.errors"
	MetricCostPrompt       = "llm.cost.prompt"
	MetricCostCompletion   = "llm.cost.completion"
	MetricCostTotal        = "llm.cost.total"
	MetricWorkflowDuration = "workflow.duration"
	MetricWorkflowActive   = "workflow.active"
)

var metricDescriptions = map[string]metric.InstrumentOption{
	MetricPromptTokens:     metric.WithDescription("Prompt tokens consumed"),
	MetricCompletionTokens: metric.WithDescription("Completion tokens produced"),
	MetricTotalTokens:      metric.WithDescription("Total tokens"),
	MetricLatency:          metric.WithDescription("LLM call latency"),
	MetricErrors:           metric.WithDescription("Failed LLM calls"),
	MetricCostPrompt:       metric.WithDescription("Prompt cost"),
	MetricCostCompletion:   metric.WithDescription("Completion cost"),
	MetricCostTotal:        metric.WithDescription("Total cost"),
	MetricWorkflowDuration: metric.WithDescription("Workflow duration"),
	MetricWorkflowActive:   metric.WithDescription("Workflows currently running"),
}

// MetricInstruments caches instruments by name so each is created once.
type MetricInstruments struct {
	meter          metric.Meter
	counters       map[string]metric.Int64Counter
	floatCounters  map[string]metric.Float64Counter
	upDownCounters map[string]metric.Int64UpDownCounter
	histograms     map[string]metric.Float64Histogram
	mu             sync.RWMutex
}

// NewMetricInstruments creates an instrument cache on meter. A nil meter
// records nothing.
func NewMetricInstruments(meter metric.Meter) *MetricInstruments {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(InstrumentationName)
	}
	return &MetricInstruments{
		meter:          meter,
		counters:       make(map[string]metric.Int64Counter),
		floatCounters:  make(map[string]metric.Float64Counter),
		upDownCounters: make(map[string]metric.Int64UpDownCounter),
		histograms:     make(map[string]metric.Float64Histogram),
	}
}

// getOrCreate looks name up in cache, creating it with create on a miss.
// The write lock is re-checked so concurrent misses create one instrument.
func getOrCreate[T any](m *MetricInstruments, cache map[string]T, name string, create func() (T, error)) (T, error) {
	m.mu.RLock()
	inst, ok := cache[name]
	m.mu.RUnlock()
	if ok {
		return inst, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if inst, ok = cache[name]; ok {
		return inst, nil
	}
	inst, err := create()
	if err != nil {
		return inst, err
	}
	cache[name] = inst
	return inst, nil
}

// RecordCounter increments an integer counter.
func (m *MetricInstruments) RecordCounter(ctx context.Context, name string, value int64, opts ...metric.AddOption) error {
	counter, err := getOrCreate(m, m.counters, name, func() (metric.Int64Counter, error) {
		return m.meter.Int64Counter(name, counterOptions(name)...)
	})
	if err != nil {
		return fmt.Errorf("failed to create counter %s: %w", name, err)
	}
	counter.Add(ctx, value, opts...)
	return nil
}

// RecordFloatCounter increments a float counter (costs).
func (m *MetricInstruments) RecordFloatCounter(ctx context.Context, name string, value float64, opts ...metric.AddOption) error {
	counter, err := getOrCreate(m, m.floatCounters, name, func() (metric.Float64Counter, error) {
		return m.meter.Float64Counter(name, floatCounterOptions(name)...)
	})
	if err != nil {
		return fmt.Errorf("failed to create float counter %s: %w", name, err)
	}
	counter.Add(ctx, value, opts...)
	return nil
}

// RecordUpDownCounter adds a value that may be negative.
func (m *MetricInstruments) RecordUpDownCounter(ctx context.Context, name string, value int64, opts ...metric.AddOption) error {
	counter, err := getOrCreate(m, m.upDownCounters, name, func() (metric.Int64UpDownCounter, error) {
		var o []metric.Int64UpDownCounterOption
		if d, ok := metricDescriptions[name]; ok {
			o = append(o, d)
		}
		return m.meter.Int64UpDownCounter(name, o...)
	})
	if err != nil {
		return fmt.Errorf("failed to create up-down counter %s: %w", name, err)
	}
	counter.Add(ctx, value, opts...)
	return nil
}

// RecordHistogram records one observation of a distribution.
func (m *MetricInstruments) RecordHistogram(ctx context.Context, name string, value float64, opts ...metric.RecordOption) error {
	histogram, err := getOrCreate(m, m.histograms, name, func() (metric.Float64Histogram, error) {
		o := []metric.Float64HistogramOption{metric.WithUnit("s")}
		if d, ok := metricDescriptions[name]; ok {
			o = append(o, d)
		}
		return m.meter.Float64Histogram(name, o...)
	})
	if err != nil {
		return fmt.Errorf("failed to create histogram %s: %w", name, err)
	}
	histogram.Record(ctx, value, opts...)
	return nil
}

func counterOptions(name string) []metric.Int64CounterOption {
	var o []metric.Int64CounterOption
	if d, ok := metricDescriptions[name]; ok {
		o = append(o, d)
	}
	return o
}

func floatCounterOptions(name string) []metric.Float64CounterOption {
	var o []metric.Float64CounterOption
	if d, ok := metricDescriptions[name]; ok {
		o = append(o, d)
	}
	return o
}

// Metrics records LLM usage metrics. Every method is best-effort: failures
// are logged and counted in Health, never returned.
type Metrics struct {
	instruments *MetricInstruments
	logger      core.Logger
	health      *Health
}

// NewMetrics creates the metrics facade. meter may be nil.
func NewMetrics(meter metric.Meter, logger core.Logger, health *Health) *Metrics {
	if health == nil {
		health = NewHealth()
	}
	return &Metrics{
		instruments: NewMetricInstruments(meter),
		logger:      core.OrNoOp(logger),
		health:      health,
	}
}

// Instruments exposes the instrument cache for custom metrics.
func (m *Metrics) Instruments() *MetricInstruments {
	return m.instruments
}

// RecordTokenUsage adds prompt, completion and total token counts.
func (m *Metrics) RecordTokenUsage(ctx context.Context, usage TokenUsage) {
	opt := metric.WithAttributes(
		attribute.String(attributes.LLMProvider, usage.Provider),
		attribute.String(attributes.LLMModel, usage.Model),
	)
	m.check("record_token_usage",
		m.instruments.RecordCounter(ctx, MetricPromptTokens, int64(usage.PromptTokens), opt),
		m.instruments.RecordCounter(ctx, MetricCompletionTokens, int64(usage.CompletionTokens), opt),
		m.instruments.RecordCounter(ctx, MetricTotalTokens, int64(usage.Total()), opt),
	)
}

// RecordCost adds prompt, completion and total cost.
func (m *Metrics) RecordCost(ctx context.Context, cost Cost) {
	currency := cost.Currency
	if currency == "" {
		currency = "USD"
	}
	opt := metric.WithAttributes(
		attribute.String(attributes.LLMProvider, cost.Provider),
		attribute.String(attributes.LLMModel, cost.Model),
		attribute.String("currency", currency),
	)
	total := cost.Total
	if total == 0 {
		total = cost.Prompt + cost.Completion
	}
	m.check("record_cost",
		m.instruments.RecordFloatCounter(ctx, MetricCostPrompt, cost.Prompt, opt),
		m.instruments.RecordFloatCounter(ctx, MetricCostCompletion, cost.Completion, opt),
		m.instruments.RecordFloatCounter(ctx, MetricCostTotal, total, opt),
	)
}

// RecordLatency records the duration of an LLM call in seconds.
func (m *Metrics) RecordLatency(ctx context.Context, d time.Duration, attrs map[string]interface{}) {
	m.check("record_latency",
		m.instruments.RecordHistogram(ctx, MetricLatency, d.Seconds(),
			metric.WithAttributes(attributes.FromMap(attrs)...)),
	)
}

// RecordError counts a failed call, tagged with the Go type of err.
func (m *Metrics) RecordError(ctx context.Context, err error, attrs map[string]interface{}) {
	if err == nil {
		return
	}
	kvs := append(attributes.FromMap(attrs), attribute.String(attributes.LLMErrorType, ErrorType(err)))
	m.check("record_error",
		m.instruments.RecordCounter(ctx, MetricErrors, 1, metric.WithAttributes(kvs...)),
	)
}

// RecordWorkflowDuration records how long w ran, with its final status.
func (m *Metrics) RecordWorkflowDuration(ctx context.Context, w workflow.Workflow, status string) {
	m.check("record_workflow_duration",
		m.instruments.RecordHistogram(ctx, MetricWorkflowDuration, w.Duration().Seconds(),
			metric.WithAttributes(
				attribute.String(attributes.WorkflowName, w.Name),
				attribute.String(attributes.WorkflowStatus, status),
			)),
	)
}

// WorkflowStarted and WorkflowEnded move the active workflow gauge.
func (m *Metrics) WorkflowStarted(ctx context.Context, name string) {
	m.check("workflow_active",
		m.instruments.RecordUpDownCounter(ctx, MetricWorkflowActive, 1,
			metric.WithAttributes(attribute.String(attributes.WorkflowName, name))),
	)
}

func (m *Metrics) WorkflowEnded(ctx context.Context, name string) {
	m.check("workflow_active",
		m.instruments.RecordUpDownCounter(ctx, MetricWorkflowActive, -1,
			metric.WithAttributes(attribute.String(attributes.WorkflowName, name))),
	)
}

func (m *Metrics) check(operation string, errs ...error) {
	err := errors.Join(errs...)
	if err == nil {
		m.health.metricRecorded()
		return
	}
	m.health.metricFailed(err)
	m.logger.Error("Metric recording failed", map[string]interface{}{
		"operation": operation,
		"error":     err.Error(),
		"impact":    "metric dropped",
	})
}

// ErrorType names the concrete type of err, e.g. "*url.Error".
// A *core.Error reports its kind instead.
func ErrorType(err error) string {
	var ce *core.Error
	if errors.As(err, &ce) && ce.Kind != "" {
		return ce.Kind
	}
	return reflect.TypeOf(err).String()
}
