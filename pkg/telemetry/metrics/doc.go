// Package metrics provides Prometheus metrics collection for the Shipdesk
// gateway.
//
// # Metrics Categories
//
//   - Request Metrics: Inbound HTTP request count and duration by route
//   - Upstream Metrics: Identity service, list store and SMTP latency, errors and health
//   - Pipeline Metrics: Pipeline runs, document rendering and email deliveries
//   - Cache Metrics: Access token cache hits, misses and invalidations
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	collector.RecordHTTPRequest("/api/lists", "GET", 200, 350*time.Millisecond)
//	collector.RecordUpstreamCall("liststore", "list_lists", "success", 120*time.Millisecond)
//	collector.RecordPipeline("submit", "success", 4*time.Second)
//
//	mux.Handle("/metrics", collector.Handler())
//
// A nil *Collector records nothing.
package metrics
