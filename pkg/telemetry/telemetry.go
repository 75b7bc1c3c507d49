package telemetry

import (
	"context"
	"fmt"
	"log/slog"

	"shipdesk-hq/gateway/pkg/config"
	"shipdesk-hq/gateway/pkg/telemetry/health"
	"shipdesk-hq/gateway/pkg/telemetry/logging"
	"shipdesk-hq/gateway/pkg/telemetry/metrics"
	"shipdesk-hq/gateway/pkg/telemetry/tracing"
)

// Telemetry bundles the observability components built from the
// telemetry configuration section.
type Telemetry struct {
	logger  *slog.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	health  *health.Checker
}

// New builds the logger, the metrics collector, the tracer and the health
// checker. The metrics collector is nil when metrics are disabled.
func New(cfg *config.TelemetryConfig, version string) (*Telemetry, error) {
	logger, err := logging.New(logging.FromConfig(cfg.Logging))
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	tracer, err := tracing.New(&cfg.Tracing, version)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Metrics, nil)
	}

	checker := health.New(cfg.Health.ProbeTimeout)
	checker.SetObserver(collector.UpdateUpstreamHealth)

	return &Telemetry{
		logger:  logger,
		metrics: collector,
		tracer:  tracer,
		health:  checker,
	}, nil
}

// Logger returns the structured logger.
func (t *Telemetry) Logger() *slog.Logger { return t.logger }

// Metrics returns the metrics collector, nil when metrics are disabled.
func (t *Telemetry) Metrics() *metrics.Collector { return t.metrics }

// Tracer returns the tracer.
func (t *Telemetry) Tracer() *tracing.Tracer { return t.tracer }

// Health returns the health checker.
func (t *Telemetry) Health() *health.Checker { return t.health }

// Shutdown flushes pending spans.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return t.tracer.Shutdown(ctx)
}
