package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/credentials"

	"github.com/untrace-dev/untrace-go/attributes"
	"github.com/untrace-dev/untrace-go/core"
)

// SDK identification sent with every export.
const (
	SDKName    = "untrace-sdk-go"
	SDKVersion = "0.1.0"
	UserAgent  = SDKName + "/" + SDKVersion

	// InstrumentationName names the tracer and meter scopes.
	InstrumentationName = "github.com/untrace-dev/untrace-go"

	tracesPath  = "/v1/traces"
	metricsPath = "/v1/metrics"
)

// Pipeline owns the tracer and meter providers built from a config.
type Pipeline struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	resource       *resource.Resource
	logger         core.Logger
}

type pipelineOptions struct {
	spanExporter   sdktrace.SpanExporter
	spanProcessors []sdktrace.SpanProcessor
	metricReader   sdkmetric.Reader
}

// PipelineOption customizes NewPipeline.
type PipelineOption func(*pipelineOptions)

// WithSpanExporter replaces the OTLP span exporter. Spans still go through
// the batch processor configured from MaxBatchSize and ExportInterval.
func WithSpanExporter(exp sdktrace.SpanExporter) PipelineOption {
	return func(o *pipelineOptions) { o.spanExporter = exp }
}

// WithSpanProcessor registers an additional span processor.
func WithSpanProcessor(p sdktrace.SpanProcessor) PipelineOption {
	return func(o *pipelineOptions) { o.spanProcessors = append(o.spanProcessors, p) }
}

// WithMetricReader replaces the periodic OTLP metric reader.
func WithMetricReader(r sdkmetric.Reader) PipelineOption {
	return func(o *pipelineOptions) { o.metricReader = r }
}

// NewPipeline builds the OpenTelemetry providers for cfg. It does not touch
// the otel globals; callers that want that install the providers themselves.
func NewPipeline(ctx context.Context, cfg *core.Config, logger core.Logger, opts ...PipelineOption) (*Pipeline, error) {
	logger = core.OrNoOp(logger)
	o := &pipelineOptions{}
	for _, opt := range opts {
		opt(o)
	}

	res := NewResource(cfg)

	exporter := o.spanExporter
	if exporter == nil {
		var err error
		exporter, err = newSpanExporter(ctx, cfg)
		if err != nil {
			return nil, &core.Error{Op: "NewPipeline", Kind: core.KindInitialization, Message: "failed to create span exporter", Err: err}
		}
	}

	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplingRate))),
		sdktrace.WithBatcher(exporter,
			sdktrace.WithMaxExportBatchSize(cfg.MaxBatchSize),
			sdktrace.WithBatchTimeout(cfg.ExportInterval),
		),
	}
	if cfg.ConsoleExport {
		console, err := stdouttrace.New(stdouttrace.WithWriter(os.Stdout), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, &core.Error{Op: "NewPipeline", Kind: core.KindInitialization, Message: "failed to create console exporter", Err: err}
		}
		tpOpts = append(tpOpts, sdktrace.WithSyncer(console))
	}
	for _, p := range o.spanProcessors {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(p))
	}

	p := &Pipeline{
		tracerProvider: sdktrace.NewTracerProvider(tpOpts...),
		resource:       res,
		logger:         logger,
	}

	if cfg.MetricsEnabled || o.metricReader != nil {
		reader := o.metricReader
		if reader == nil {
			metricExporter, err := newMetricExporter(ctx, cfg)
			if err != nil {
				_ = p.tracerProvider.Shutdown(ctx)
				return nil, &core.Error{Op: "NewPipeline", Kind: core.KindInitialization, Message: "failed to create metric exporter", Err: err}
			}
			reader = sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(cfg.ExportInterval))
		}
		p.meterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(reader),
		)
	}

	logger.Info("Telemetry pipeline created", map[string]interface{}{
		"operation":       "pipeline_init",
		"endpoint":        cfg.BaseURL,
		"protocol":        cfg.ExporterProtocol,
		"sampling_rate":   cfg.SamplingRate,
		"max_batch_size":  cfg.MaxBatchSize,
		"export_interval": cfg.ExportInterval.String(),
		"metrics":         p.meterProvider != nil,
		"console":         cfg.ConsoleExport,
	})

	return p, nil
}

// NewResource describes the instrumented service.
func NewResource(cfg *core.Config) *resource.Resource {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironment(cfg.Environment),
		semconv.TelemetrySDKLanguageGo,
		attribute.String(attributes.SDKName, SDKName),
		attribute.String(attributes.SDKVersion, SDKVersion),
		attribute.String(attributes.SDKLanguage, "go"),
	}
	attrs = append(attrs, attributes.FromMap(cfg.ResourceAttributes)...)
	return resource.NewWithAttributes(semconv.SchemaURL, attrs...)
}

// exportHeaders are the auth and identification headers plus any
// configured extras. Configured headers win.
func exportHeaders(cfg *core.Config) map[string]string {
	headers := map[string]string{
		"Authorization": "Bearer " + cfg.APIKey,
		"User-Agent":    UserAgent,
	}
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	return headers
}

func newSpanExporter(ctx context.Context, cfg *core.Config) (sdktrace.SpanExporter, error) {
	var client otlptrace.Client
	switch cfg.ExporterProtocol {
	case core.ProtocolGRPC:
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		clientOpts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(u.Host),
			otlptracegrpc.WithHeaders(exportHeaders(cfg)),
		}
		if cfg.Insecure || u.Scheme == "http" {
			clientOpts = append(clientOpts, otlptracegrpc.WithInsecure())
		} else {
			clientOpts = append(clientOpts, otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")))
		}
		client = otlptracegrpc.NewClient(clientOpts...)
	default:
		clientOpts := []otlptracehttp.Option{
			otlptracehttp.WithEndpointURL(cfg.BaseURL + tracesPath),
			otlptracehttp.WithHeaders(exportHeaders(cfg)),
		}
		if cfg.Insecure {
			clientOpts = append(clientOpts, otlptracehttp.WithInsecure())
		}
		client = otlptracehttp.NewClient(clientOpts...)
	}
	return otlptrace.New(ctx, client)
}

// newMetricExporter always uses OTLP/HTTP.
func newMetricExporter(ctx context.Context, cfg *core.Config) (sdkmetric.Exporter, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpointURL(cfg.BaseURL + metricsPath),
		otlpmetrichttp.WithHeaders(exportHeaders(cfg)),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	return otlpmetrichttp.New(ctx, opts...)
}

// TracerProvider returns the SDK tracer provider.
func (p *Pipeline) TracerProvider() *sdktrace.TracerProvider {
	return p.tracerProvider
}

// MeterProvider returns the SDK meter provider, or nil when metrics are off.
func (p *Pipeline) MeterProvider() *sdkmetric.MeterProvider {
	return p.meterProvider
}

// Resource returns the resource attached to every span and metric.
func (p *Pipeline) Resource() *resource.Resource {
	return p.resource
}

// Tracer returns the SDK's tracer scope.
func (p *Pipeline) Tracer() trace.Tracer {
	return p.tracerProvider.Tracer(InstrumentationName, trace.WithInstrumentationVersion(SDKVersion))
}

// Meter returns the SDK's meter scope, or nil when metrics are off.
func (p *Pipeline) Meter() metric.Meter {
	if p.meterProvider == nil {
		return nil
	}
	return p.meterProvider.Meter(InstrumentationName, metric.WithInstrumentationVersion(SDKVersion))
}

// ForceFlush exports everything buffered so far.
func (p *Pipeline) ForceFlush(ctx context.Context) error {
	var errs []error
	if err := p.tracerProvider.ForceFlush(ctx); err != nil {
		errs = append(errs, fmt.Errorf("flush traces: %w", err))
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.ForceFlush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush metrics: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return &core.Error{Op: "Pipeline.ForceFlush", Kind: core.KindExport, Err: err}
	}
	return nil
}

// Shutdown flushes and stops both providers. Errors from each are joined.
func (p *Pipeline) Shutdown(ctx context.Context) error {
	start := time.Now()
	var errs []error
	if err := p.tracerProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown tracer provider: %w", err))
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown meter provider: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		p.logger.Error("Telemetry pipeline shutdown failed", map[string]interface{}{
			"operation": "pipeline_shutdown",
			"error":     err.Error(),
			"impact":    "buffered spans or metrics may be lost",
		})
		return &core.Error{Op: "Pipeline.Shutdown", Kind: core.KindExport, Err: err}
	}

	p.logger.Info("Telemetry pipeline shut down", map[string]interface{}{
		"operation":   "pipeline_shutdown",
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}
