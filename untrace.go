// Package untrace is the entry point of the Untrace SDK: LLM observability
// on top of OpenTelemetry.
//
// Most applications call Init (or InitFromEnv) once at startup and Shutdown
// before exit:
//
//	u, err := untrace.InitFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer u.Shutdown(context.Background())
//
//	err = u.Instrumentation().TraceLLMCall(ctx, "", untrace.LLMSpanOptions{
//	    Provider: "openai", Model: "gpt-4o", Operation: untrace.OperationChat,
//	}, callModel)
//
// New builds an independent instance without touching global state, for
// dependency injection and tests.
package untrace

import (
	"context"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/untrace-dev/untrace-go/core"
	"github.com/untrace-dev/untrace-go/instrumentation"
	"github.com/untrace-dev/untrace-go/providers"
	"github.com/untrace-dev/untrace-go/telemetry"
	"github.com/untrace-dev/untrace-go/workflow"
)

// Untrace owns one telemetry pipeline and the helpers built on it.
// All methods are safe for concurrent use.
type Untrace struct {
	config          *core.Config
	logger          core.Logger
	health          *telemetry.Health
	pipeline        *telemetry.Pipeline
	tracer          *telemetry.Tracer
	metrics         *telemetry.Metrics
	workflows       *workflow.Context
	providers       *providers.Registry
	instrumentation *instrumentation.Instrumentation

	mu       sync.RWMutex
	shutdown bool
}

type options struct {
	logger          core.Logger
	pipelineOptions []telemetry.PipelineOption
}

// Option customizes New and Init.
type Option func(*options)

// WithLogger replaces the default production logger.
func WithLogger(l core.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithPipelineOptions passes options through to telemetry.NewPipeline, e.g.
// an in-memory span exporter in tests.
func WithPipelineOptions(opts ...telemetry.PipelineOption) Option {
	return func(o *options) { o.pipelineOptions = append(o.pipelineOptions, opts...) }
}

var global atomic.Pointer[Untrace]

// New validates cfg and builds an instance. It installs nothing globally.
func New(cfg *core.Config, opts ...Option) (*Untrace, error) {
	if cfg == nil {
		return nil, &core.Error{Op: "New", Kind: core.KindConfiguration, Message: "configuration is required", Err: core.ErrMissingConfiguration}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Clone()

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = core.NewProductionLogger(cfg.ServiceName, cfg.Debug)
	}

	pipeline, err := telemetry.NewPipeline(context.Background(), cfg, logger, o.pipelineOptions...)
	if err != nil {
		return nil, err
	}

	health := telemetry.NewHealth()
	workflows := workflow.NewContext(logger)
	registry := providers.NewRegistry(logger)
	registry.RegisterDefaults()
	registry.ApplySelection(cfg.Providers)

	tracer := telemetry.NewTracer(pipeline.Tracer(), workflows, health)
	metrics := telemetry.NewMetrics(pipeline.Meter(), logger, health)

	u := &Untrace{
		config:    cfg,
		logger:    logger,
		health:    health,
		pipeline:  pipeline,
		tracer:    tracer,
		metrics:   metrics,
		workflows: workflows,
		providers: registry,
		instrumentation: instrumentation.New(instrumentation.ConfigFrom(cfg), tracer, metrics,
			instrumentation.WithWorkflows(workflows),
			instrumentation.WithProviders(registry),
			instrumentation.WithLogger(logger),
		),
	}
	health.MarkInitialized()

	logger.Info("Untrace initialized", map[string]interface{}{
		"operation":         "init",
		"service":           cfg.ServiceName,
		"environment":       cfg.Environment,
		"enabled_providers": len(registry.Enabled()),
		"auto_instrument":   !cfg.DisableAutoInstrumentation,
		"sdk_version":       telemetry.SDKVersion,
	})
	return u, nil
}

// Init builds an instance and installs it as the global one: it becomes
// the otel tracer and meter provider and W3C trace context plus baggage
// become the global propagator. A second Init before Shutdown fails with
// ErrAlreadyInitialized.
func Init(cfg *core.Config, opts ...Option) (*Untrace, error) {
	if global.Load() != nil {
		return nil, alreadyInitialized()
	}
	u, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if !global.CompareAndSwap(nil, u) {
		_ = u.pipeline.Shutdown(context.Background())
		return nil, alreadyInitialized()
	}
	u.installGlobals()
	return u, nil
}

func alreadyInitialized() error {
	return &core.Error{Op: "Init", Kind: core.KindInitialization, Err: core.ErrAlreadyInitialized}
}

func (u *Untrace) installGlobals() {
	otel.SetTracerProvider(u.pipeline.TracerProvider())
	if mp := u.pipeline.MeterProvider(); mp != nil {
		otel.SetMeterProvider(mp)
	}
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		u.logger.Error("OpenTelemetry error", map[string]interface{}{
			"operation": "otel",
			"error":     err.Error(),
			"impact":    "telemetry may be incomplete",
		})
	}))
}

// InitFromEnv loads the configuration from UNTRACE_* variables, applies
// opts on top and calls Init.
func InitFromEnv(opts ...core.Option) (*Untrace, error) {
	cfg, err := core.NewConfigFromEnv(opts...)
	if err != nil {
		return nil, err
	}
	return Init(cfg)
}

// MustInit is Init that panics on error.
func MustInit(cfg *core.Config, opts ...Option) *Untrace {
	u, err := Init(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return u
}

// MustInitFromEnv is InitFromEnv that panics on error.
func MustInitFromEnv(opts ...core.Option) *Untrace {
	u, err := InitFromEnv(opts...)
	if err != nil {
		panic(err)
	}
	return u
}

// Instance returns the globally installed instance.
func Instance() (*Untrace, bool) {
	u := global.Load()
	return u, u != nil
}

// Config returns a copy of the resolved configuration.
func (u *Untrace) Config() *core.Config { return u.config.Clone() }

// Logger returns the logger shared by all components.
func (u *Untrace) Logger() core.Logger { return u.logger }

// Tracer returns the span helper.
func (u *Untrace) Tracer() *telemetry.Tracer { return u.tracer }

// Metrics returns the metrics helper.
func (u *Untrace) Metrics() *telemetry.Metrics { return u.metrics }

// Context returns the current-workflow context.
func (u *Untrace) Context() *workflow.Context { return u.workflows }

// Providers returns the provider registry.
func (u *Untrace) Providers() *providers.Registry { return u.providers }

// Instrumentation returns the Trace* helpers.
func (u *Untrace) Instrumentation() *instrumentation.Instrumentation { return u.instrumentation }

// Health returns the SDK's self-monitoring counters.
func (u *Untrace) Health() *telemetry.Health { return u.health }

// TracerProvider returns the SDK tracer provider.
func (u *Untrace) TracerProvider() *sdktrace.TracerProvider { return u.pipeline.TracerProvider() }

// MeterProvider returns the SDK meter provider, or nil when metrics are off.
func (u *Untrace) MeterProvider() *sdkmetric.MeterProvider { return u.pipeline.MeterProvider() }

// Flush exports everything buffered so far.
func (u *Untrace) Flush(ctx context.Context) error {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if u.shutdown {
		return &core.Error{Op: "Untrace.Flush", Kind: core.KindInitialization, Err: core.ErrShutdown}
	}

	u.logger.Debug("Flushing telemetry", map[string]interface{}{"operation": "flush"})
	if err := u.pipeline.ForceFlush(ctx); err != nil {
		u.health.FlushFailed(err)
		u.logger.Error("Flush failed", map[string]interface{}{
			"operation": "flush",
			"error":     err.Error(),
			"impact":    "spans remain buffered until the next export",
		})
		return err
	}
	return nil
}

// Shutdown ends the current workflow, flushes and stops the pipeline, and
// uninstalls the instance if it is the global one. Calling it again is a
// no-op.
func (u *Untrace) Shutdown(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.shutdown {
		return nil
	}
	u.shutdown = true

	if w, ok := u.workflows.EndCurrentWorkflow(); ok {
		u.logger.Debug("Ended workflow on shutdown", map[string]interface{}{
			"operation":   "shutdown",
			"workflow_id": w.ID,
		})
	}

	err := u.pipeline.Shutdown(ctx)
	if err != nil {
		u.health.FlushFailed(err)
	}
	u.health.MarkShutDown()
	global.CompareAndSwap(u, nil)
	return err
}
