package metrics

import (
	"time"

	"shipdesk-hq/gateway/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics tracks calls to the identity service, the list store and
// the SMTP relay.
//
// Metrics:
//   - shipdesk_gateway_upstream_health: Probed health (1=healthy, 0=unhealthy)
//   - shipdesk_gateway_upstream_latency_seconds: Call latency
//   - shipdesk_gateway_upstream_requests_total: Calls by service, operation, outcome
//   - shipdesk_gateway_upstream_errors_total: Errors by service and type
type UpstreamMetrics struct {
	health   *prometheus.GaugeVec
	latency  *prometheus.HistogramVec
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
}

// NewUpstreamMetrics creates and registers upstream metrics with the provided registry.
func NewUpstreamMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *UpstreamMetrics {
	um := &UpstreamMetrics{
		health: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_health",
				Help:      "Upstream health status from the readiness probe (1=healthy, 0=unhealthy)",
			},
			[]string{"service"},
		),

		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_latency_seconds",
				Help:      "Upstream call latency in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"service", "operation"},
		),

		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_requests_total",
				Help:      "Total number of upstream calls",
			},
			[]string{"service", "operation", "outcome"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_errors_total",
				Help:      "Total number of upstream errors by type",
			},
			[]string{"service", "error_type"},
		),
	}

	registry.MustRegister(
		um.health,
		um.latency,
		um.requests,
		um.errors,
	)

	return um
}

// UpdateHealth sets the health gauge of a service.
func (um *UpstreamMetrics) UpdateHealth(service string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	um.health.WithLabelValues(service).Set(value)
}

// RecordCall records the latency and outcome of one call.
func (um *UpstreamMetrics) RecordCall(service, operation, outcome string, duration time.Duration) {
	um.requests.WithLabelValues(service, operation, outcome).Inc()
	um.latency.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordError records an error from a service.
//
// Common error types:
//   - "auth": Credentials rejected or token expired
//   - "not_found": Site, list or item does not exist
//   - "timeout": Deadline exceeded
//   - "server_error": 5xx from the service
//   - "network": Connection failure
func (um *UpstreamMetrics) RecordError(service, errorType string) {
	um.errors.WithLabelValues(service, errorType).Inc()
}
