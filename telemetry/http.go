package telemetry

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/untrace-dev/untrace-go/attributes"
	"github.com/untrace-dev/untrace-go/workflow"
)

// HTTPConfig configures the HTTP middleware and client.
type HTTPConfig struct {
	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
	// Propagator defaults to the global propagator.
	Propagator propagation.TextMapPropagator
	// ExcludedPaths are not traced, e.g. "/health".
	ExcludedPaths []string
}

func (c *HTTPConfig) otelhttpOptions() []otelhttp.Option {
	if c == nil {
		return nil
	}
	var opts []otelhttp.Option
	if c.TracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(c.TracerProvider))
	}
	if c.Propagator != nil {
		opts = append(opts, otelhttp.WithPropagators(c.Propagator))
	}
	if len(c.ExcludedPaths) > 0 {
		excluded := make(map[string]bool, len(c.ExcludedPaths))
		for _, p := range c.ExcludedPaths {
			excluded[p] = true
		}
		opts = append(opts, otelhttp.WithFilter(func(r *http.Request) bool {
			return !excluded[r.URL.Path]
		}))
	}
	return opts
}

// TracingMiddleware traces incoming requests, continuing any W3C trace
// context in the headers. Workflow identity found in the request baggage is
// copied onto the server span.
func TracingMiddleware(operation string, cfg *HTTPConfig) func(http.Handler) http.Handler {
	opts := append(cfg.otelhttpOptions(),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "HTTP " + r.Method + " " + r.URL.Path
		}),
	)
	return func(next http.Handler) http.Handler {
		stamped := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, name, runID, ok := workflow.IdentityFromBaggage(r.Context()); ok {
				span := trace.SpanFromContext(r.Context())
				span.SetAttributes(
					attribute.String(attributes.WorkflowID, id),
					attribute.String(attributes.WorkflowName, name),
				)
				if runID != "" {
					span.SetAttributes(attribute.String(attributes.WorkflowRunID, runID))
				}
			}
			next.ServeHTTP(w, r)
		})
		return otelhttp.NewHandler(stamped, operation, opts...)
	}
}

// NewTracedHTTPClient returns a client that starts a client span per request
// and injects trace context and baggage headers. A nil base uses
// http.DefaultTransport.
func NewTracedHTTPClient(base http.RoundTripper, cfg *HTTPConfig) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Transport: otelhttp.NewTransport(base, cfg.otelhttpOptions()...),
	}
}
