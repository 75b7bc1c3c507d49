package metrics

import (
	"time"

	"shipdesk-hq/gateway/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics tracks the gateway pipelines and the document path.
//
// Metrics:
//   - shipdesk_gateway_pipeline_runs_total: Pipeline runs by name and outcome
//   - shipdesk_gateway_pipeline_duration_seconds: Pipeline duration
//   - shipdesk_gateway_render_duration_seconds: HTML to PDF duration
//   - shipdesk_gateway_render_size_bytes: Rendered document size
//   - shipdesk_gateway_deliveries_total: Email deliveries by outcome
type PipelineMetrics struct {
	runsTotal      *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	renderDuration *prometheus.HistogramVec
	renderSize     prometheus.Histogram
	deliveries     *prometheus.CounterVec
}

// NewPipelineMetrics creates and registers pipeline metrics with the provided registry.
func NewPipelineMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *PipelineMetrics {
	pm := &PipelineMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "pipeline_runs_total",
				Help:      "Total number of pipeline runs",
			},
			[]string{"pipeline", "outcome"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "pipeline_duration_seconds",
				Help:      "Duration of pipeline runs in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"pipeline"},
		),

		renderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "render_duration_seconds",
				Help:      "Duration of document rendering in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"outcome"},
		),

		renderSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "render_size_bytes",
				Help:      "Size of rendered documents in bytes",
				Buckets:   prometheus.ExponentialBuckets(16*1024, 2, 8), // 16KB to 2MB
			},
		),

		deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "deliveries_total",
				Help:      "Total number of email delivery attempts",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(
		pm.runsTotal,
		pm.duration,
		pm.renderDuration,
		pm.renderSize,
		pm.deliveries,
	)

	return pm
}

// RecordPipeline records a completed pipeline run.
func (pm *PipelineMetrics) RecordPipeline(pipeline, outcome string, duration time.Duration) {
	pm.runsTotal.WithLabelValues(pipeline, outcome).Inc()
	pm.duration.WithLabelValues(pipeline).Observe(duration.Seconds())
}

// RecordRender records one rendering. The size is only observed for
// successful renders.
func (pm *PipelineMetrics) RecordRender(outcome string, duration time.Duration, sizeBytes int) {
	pm.renderDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	if sizeBytes > 0 {
		pm.renderSize.Observe(float64(sizeBytes))
	}
}

// RecordDelivery records one email delivery attempt.
func (pm *PipelineMetrics) RecordDelivery(outcome string) {
	pm.deliveries.WithLabelValues(outcome).Inc()
}
