package untrace

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/untrace-dev/untrace-go/attributes"
	"github.com/untrace-dev/untrace-go/core"
	"github.com/untrace-dev/untrace-go/telemetry"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := NewConfig(
		WithAPIKey("test-key"),
		WithServiceName("facade-test"),
		WithMetrics(false),
	)
	require.NoError(t, err)
	return cfg
}

func newTestInstance(t *testing.T, cfg *Config) (*Untrace, *tracetest.InMemoryExporter) {
	t.Helper()
	exp := tracetest.NewInMemoryExporter()
	u, err := New(cfg, WithLogger(&core.NoOpLogger{}), WithPipelineOptions(telemetry.WithSpanExporter(exp)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = u.Shutdown(context.Background()) })
	return u, exp
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
}

func TestNewValidates(t *testing.T) {
	cfg := DefaultConfig()
	_, err := New(cfg)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	cfg.APIKey = "k"
	cfg.SamplingRate = 2
	_, err = New(cfg)
	assert.ErrorIs(t, err, ErrInvalidSamplingRate)
}

func TestNewDoesNotInstallGlobal(t *testing.T) {
	u, _ := newTestInstance(t, testConfig(t))
	require.NotNil(t, u)

	_, ok := Instance()
	assert.False(t, ok)
	assert.True(t, u.Health().Snapshot().Initialized)
}

func TestConfigIsCopied(t *testing.T) {
	cfg := testConfig(t)
	u, _ := newTestInstance(t, cfg)

	cfg.ServiceName = "changed"
	assert.Equal(t, "facade-test", u.Config().ServiceName)

	got := u.Config()
	got.ServiceName = "mutated"
	assert.Equal(t, "facade-test", u.Config().ServiceName)
}

func TestInitSingleton(t *testing.T) {
	opts := []Option{WithLogger(&core.NoOpLogger{}), WithPipelineOptions(telemetry.WithSpanExporter(tracetest.NewInMemoryExporter()))}

	u, err := Init(testConfig(t), opts...)
	require.NoError(t, err)

	got, ok := Instance()
	require.True(t, ok)
	assert.Same(t, u, got)
	assert.Same(t, u.TracerProvider(), otel.GetTracerProvider())

	_, err = Init(testConfig(t), opts...)
	require.Error(t, err)
	assert.True(t, IsInitializationError(err))
	assert.ErrorIs(t, err, ErrAlreadyInitialized)

	assert.Panics(t, func() { MustInit(testConfig(t), opts...) })

	require.NoError(t, u.Shutdown(context.Background()))
	_, ok = Instance()
	assert.False(t, ok)

	again, err := Init(testConfig(t), opts...)
	require.NoError(t, err)
	require.NoError(t, again.Shutdown(context.Background()))
}

func TestShutdownOfNonGlobalKeepsGlobal(t *testing.T) {
	opts := []Option{WithLogger(&core.NoOpLogger{}), WithPipelineOptions(telemetry.WithSpanExporter(tracetest.NewInMemoryExporter()))}
	g, err := Init(testConfig(t), opts...)
	require.NoError(t, err)
	defer g.Shutdown(context.Background())

	local, _ := newTestInstance(t, testConfig(t))
	require.NoError(t, local.Shutdown(context.Background()))

	got, ok := Instance()
	require.True(t, ok)
	assert.Same(t, g, got)
}

func TestFlushAndShutdown(t *testing.T) {
	u, exp := newTestInstance(t, testConfig(t))
	ctx := context.Background()

	_, span := u.Tracer().StartSpan(ctx, "work", SpanOptions{})
	span.End()
	require.NoError(t, u.Flush(ctx))
	assert.Len(t, exp.GetSpans(), 1)

	u.Context().StartWorkflow("pending", "", WorkflowOptions{})
	require.NoError(t, u.Shutdown(ctx))
	require.NoError(t, u.Shutdown(ctx), "shutdown is idempotent")

	_, active := u.Context().CurrentWorkflow()
	assert.False(t, active, "shutdown ends the current workflow")

	err := u.Flush(ctx)
	assert.ErrorIs(t, err, ErrShutdown)
	assert.True(t, u.Health().Snapshot().ShutDown)
}

func TestEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	cfg.MetricsEnabled = true
	exp := tracetest.NewInMemoryExporter()
	reader := sdkmetric.NewManualReader()
	u, err := New(cfg,
		WithLogger(&core.NoOpLogger{}),
		WithPipelineOptions(telemetry.WithSpanExporter(exp), telemetry.WithMetricReader(reader)))
	require.NoError(t, err)
	defer u.Shutdown(context.Background())

	ctx := context.Background()
	err = u.Instrumentation().TraceWorkflow(ctx, "answer-question", "run-42", WorkflowOptions{UserID: "u-1"}, func(ctx context.Context) error {
		_, err := u.Instrumentation().TraceLLMResult(ctx, "", LLMSpanOptions{
			Provider:    "openai",
			Model:       "gpt-4o",
			Operation:   OperationChat,
			Temperature: Ptr(0.7),
		}, func(context.Context) (LLMResult, error) {
			return LLMResult{Usage: &TokenUsage{PromptTokens: 30, CompletionTokens: 10}}, nil
		})
		return err
	})
	require.NoError(t, err)
	require.NoError(t, u.Flush(ctx))

	spans := exp.GetSpans()
	require.Len(t, spans, 2)
	llm, root := spans[0], spans[1]
	assert.Equal(t, "openai.chat", llm.Name)
	assert.Equal(t, "workflow.answer-question", root.Name)
	assert.Equal(t, root.SpanContext.TraceID(), llm.SpanContext.TraceID())

	llmAttrs := map[string]string{}
	for _, kv := range llm.Attributes {
		llmAttrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "run-42", llmAttrs[attributes.WorkflowRunID])
	assert.Equal(t, "0.7", llmAttrs[attributes.LLMTemperature])
	assert.Equal(t, "40", llmAttrs[attributes.LLMTotalTokens])

	svc, _ := llm.Resource.Set().Value(semconv.ServiceNameKey)
	assert.Equal(t, "facade-test", svc.AsString())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names[telemetry.MetricTotalTokens])
	assert.True(t, names[telemetry.MetricWorkflowDuration])
	assert.Equal(t, int64(2), u.Health().Snapshot().SpansStarted)
}

func TestProviderSelection(t *testing.T) {
	cfg := testConfig(t)
	cfg.Providers = []string{"openai", "Cohere"}
	u, _ := newTestInstance(t, cfg)

	assert.True(t, u.Providers().IsEnabled("openai"))
	assert.True(t, u.Providers().IsEnabled("cohere"))
	assert.False(t, u.Providers().IsEnabled("anthropic"))
	assert.Len(t, u.Providers().All(), 6)
}

func TestAutoInstrumentationDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.DisableAutoInstrumentation = true
	u, exp := newTestInstance(t, cfg)

	called := false
	require.NoError(t, u.Instrumentation().TraceFunction(context.Background(), "f", func(context.Context) error {
		called = true
		return nil
	}))
	require.NoError(t, u.Flush(context.Background()))
	assert.True(t, called)
	assert.Empty(t, exp.GetSpans())
}

func TestInitFromEnv(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	t.Setenv("UNTRACE_API_KEY", "env-key")
	t.Setenv("UNTRACE_BASE_URL", srv.URL)
	t.Setenv("UNTRACE_SERVICE_NAME", "env-service")
	t.Setenv("UNTRACE_METRICS_ENABLED", "false")

	u, err := InitFromEnv(WithEnvironment("test"))
	require.NoError(t, err)
	defer u.Shutdown(context.Background())

	cfg := u.Config()
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "env-service", cfg.ServiceName)
	assert.Equal(t, "test", cfg.Environment)
	assert.Nil(t, u.MeterProvider())
}

func TestInitFromEnvMissingKey(t *testing.T) {
	t.Setenv("UNTRACE_API_KEY", "")
	_, err := InitFromEnv()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingAPIKey))
	assert.Panics(t, func() { MustInitFromEnv() })
}
