package telemetry

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/satishbabariya/nlsql/internal/apperr"
)

// PrometheusTelemetry implements Telemetry with Prometheus collectors held in
// a registry of its own.
type PrometheusTelemetry struct {
	registry *prometheus.Registry

	queryDuration     *prometheus.HistogramVec
	queryTotal        *prometheus.CounterVec
	queryRows         *prometheus.CounterVec
	inferenceDuration *prometheus.HistogramVec
	inferenceTotal    *prometheus.CounterVec
	errorTotal        *prometheus.CounterVec
	connectionsTotal  *prometheus.CounterVec
}

// NewPrometheusTelemetry creates a new Prometheus telemetry adapter.
func NewPrometheusTelemetry(config *Config) *PrometheusTelemetry {
	ns := "nlsql"
	if config != nil && config.Namespace != "" {
		ns = config.Namespace
	}

	p := &PrometheusTelemetry{
		registry: prometheus.NewRegistry(),
		queryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "query_duration_seconds",
				Help:      "SQL execution and row conversion latency.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"dialect", "status"},
		),
		queryTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "queries_total",
				Help:      "Total number of SQL executions.",
			},
			[]string{"dialect", "status"},
		),
		queryRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "query_rows_total",
				Help:      "Total number of rows returned.",
			},
			[]string{"dialect"},
		),
		inferenceDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "inference_duration_seconds",
				Help:      "Inference process wall time.",
				Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"operation", "status"},
		),
		inferenceTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "inference_runs_total",
				Help:      "Total number of inference process runs.",
			},
			[]string{"operation", "status"},
		),
		errorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "errors_total",
				Help:      "Total number of engine errors by kind.",
			},
			[]string{"operation", "kind"},
		),
		connectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "connection_events_total",
				Help:      "Total number of session connection events.",
			},
			[]string{"dialect", "event", "status"},
		),
	}

	p.registry.MustRegister(
		p.queryDuration,
		p.queryTotal,
		p.queryRows,
		p.inferenceDuration,
		p.inferenceTotal,
		p.errorTotal,
		p.connectionsTotal,
	)
	return p
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordQuery records a query execution.
func (p *PrometheusTelemetry) RecordQuery(ctx context.Context, info QueryInfo) {
	s := status(info.Success)
	p.queryDuration.WithLabelValues(info.Dialect, s).Observe(info.Duration.Seconds())
	p.queryTotal.WithLabelValues(info.Dialect, s).Inc()
	if info.Rows > 0 {
		p.queryRows.WithLabelValues(info.Dialect).Add(float64(info.Rows))
	}
}

// RecordInference records an inference run.
func (p *PrometheusTelemetry) RecordInference(ctx context.Context, info InferenceInfo) {
	s := status(info.Success)
	p.inferenceDuration.WithLabelValues(info.Operation, s).Observe(info.Duration.Seconds())
	p.inferenceTotal.WithLabelValues(info.Operation, s).Inc()
}

// RecordError records an error under its taxonomy kind.
func (p *PrometheusTelemetry) RecordError(ctx context.Context, info ErrorInfo) {
	p.errorTotal.WithLabelValues(info.Operation, string(apperr.KindOf(info.Error))).Inc()
}

// RecordConnection records a connection event.
func (p *PrometheusTelemetry) RecordConnection(ctx context.Context, info ConnectionInfo) {
	p.connectionsTotal.WithLabelValues(info.Dialect, info.Event, status(info.Success)).Inc()
}

// Registry returns the registry holding the collectors.
func (p *PrometheusTelemetry) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the collected metrics in the Prometheus exposition format.
func (p *PrometheusTelemetry) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Close closes the telemetry adapter.
func (p *PrometheusTelemetry) Close(ctx context.Context) error {
	return nil
}

var _ Telemetry = (*PrometheusTelemetry)(nil)
