package telemetry

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// HealthStatus is a point-in-time view of the SDK's own behaviour.
type HealthStatus struct {
	Initialized     bool   `json:"initialized"`
	ShutDown        bool   `json:"shut_down"`
	SpansStarted    int64  `json:"spans_started"`
	MetricsRecorded int64  `json:"metrics_recorded"`
	MetricErrors    int64  `json:"metric_errors"`
	FlushErrors     int64  `json:"flush_errors"`
	LastError       string `json:"last_error,omitempty"`
	Uptime          string `json:"uptime"`
}

// Health counts what the SDK has done. Safe for concurrent use.
type Health struct {
	startTime       time.Time
	initialized     atomic.Bool
	shutDown        atomic.Bool
	spansStarted    atomic.Int64
	metricsRecorded atomic.Int64
	metricErrors    atomic.Int64
	flushErrors     atomic.Int64
	lastError       atomic.Value // string
}

// NewHealth starts the uptime clock.
func NewHealth() *Health {
	return &Health{startTime: time.Now()}
}

func (h *Health) spanStarted()    { h.spansStarted.Add(1) }
func (h *Health) metricRecorded() { h.metricsRecorded.Add(1) }

func (h *Health) metricFailed(err error) {
	h.metricErrors.Add(1)
	h.lastError.Store(err.Error())
}

// MarkInitialized records that the owning instance finished construction.
func (h *Health) MarkInitialized() { h.initialized.Store(true) }

// MarkShutDown records that the owning instance was shut down.
func (h *Health) MarkShutDown() { h.shutDown.Store(true) }

// FlushFailed records a failed flush or shutdown.
func (h *Health) FlushFailed(err error) {
	h.flushErrors.Add(1)
	h.lastError.Store(err.Error())
}

// Snapshot returns the current counters.
func (h *Health) Snapshot() HealthStatus {
	lastErr, _ := h.lastError.Load().(string)
	return HealthStatus{
		Initialized:     h.initialized.Load(),
		ShutDown:        h.shutDown.Load(),
		SpansStarted:    h.spansStarted.Load(),
		MetricsRecorded: h.metricsRecorded.Load(),
		MetricErrors:    h.metricErrors.Load(),
		FlushErrors:     h.flushErrors.Load(),
		LastError:       lastErr,
		Uptime:          time.Since(h.startTime).Round(time.Millisecond).String(),
	}
}

// Handler serves the snapshot as JSON. It answers 503 before
// initialization or after shutdown, 206 when more than 10% of metric
// recordings failed, and 200 otherwise.
func (h *Health) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := h.Snapshot()
		w.Header().Set("Content-Type", "application/json")

		switch {
		case !status.Initialized || status.ShutDown:
			w.WriteHeader(http.StatusServiceUnavailable)
		case float64(status.MetricErrors)/float64(status.MetricsRecorded+status.MetricErrors+1) > 0.1:
			w.WriteHeader(http.StatusPartialContent)
		default:
			w.WriteHeader(http.StatusOK)
		}

		_ = json.NewEncoder(w).Encode(status)
	})
}
