package metrics

import (
	"strconv"
	"sync"
	"time"

	"shipdesk-hq/gateway/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the main orchestrator for all Prometheus metrics in the
// gateway. It manages metric registration and provides a single interface
// for recording metrics across the HTTP layer, the upstream clients and the
// pipelines.
//
// A nil *Collector is valid and records nothing, so components can be built
// without metrics in tests and CLI commands.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// HTTP surface metrics
	requestMetrics *RequestMetrics

	// Identity service, list store and SMTP relay metrics
	upstreamMetrics *UpstreamMetrics

	// Pipeline, render and delivery metrics
	pipelineMetrics *PipelineMetrics

	// Token cache metrics
	cacheMetrics *CacheMetrics

	// Cardinality tracking for the route label
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a new registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:    true,
//		Namespace:  "shipdesk",
//		Subsystem:  "gateway",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Set defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = append([]float64(nil), config.DefaultRequestDurationBuckets...)
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(100),
	}

	c.requestMetrics = NewRequestMetrics(cfg, registry)
	c.upstreamMetrics = NewUpstreamMetrics(cfg, registry)
	c.pipelineMetrics = NewPipelineMetrics(cfg, registry)
	c.cacheMetrics = NewCacheMetrics(cfg, registry)

	return c
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordHTTPRequest records a completed inbound request.
//
// Parameters:
//   - route: Route pattern (e.g., "/api/item/{id}")
//   - method: HTTP method
//   - status: Response status code
//   - duration: Time spent serving the request
func (c *Collector) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	if !c.enabled() {
		return
	}

	if route == "" {
		route = "unmatched"
	}
	if !c.cardinalityLimiter.Allow(route) {
		route = "other"
	}

	c.requestMetrics.RecordRequest(route, method, strconv.Itoa(status), duration)
}

// RecordUpstreamCall records one call to a remote collaborator.
//
// Parameters:
//   - service: "identity", "liststore" or "smtp"
//   - operation: Operation name (e.g., "resolve_site", "query_items")
//   - outcome: "success" or "error"
//   - duration: Call latency
func (c *Collector) RecordUpstreamCall(service, operation, outcome string, duration time.Duration) {
	if !c.enabled() {
		return
	}

	c.upstreamMetrics.RecordCall(service, operation, outcome, duration)
}

// RecordUpstreamError records an error from a remote collaborator.
//
// Parameters:
//   - service: "identity", "liststore" or "smtp"
//   - errorType: Type of error (e.g., "not_found", "auth", "timeout", "server_error")
func (c *Collector) RecordUpstreamError(service, errorType string) {
	if !c.enabled() {
		return
	}

	c.upstreamMetrics.RecordError(service, errorType)
}

// UpdateUpstreamHealth updates the probed health of a remote collaborator.
// The health metric is a gauge where 1=healthy, 0=unhealthy.
func (c *Collector) UpdateUpstreamHealth(service string, healthy bool) {
	if !c.enabled() {
		return
	}

	c.upstreamMetrics.UpdateHealth(service, healthy)
}

// RecordPipeline records a completed pipeline run.
//
// Parameters:
//   - pipeline: "item", "lists", "related" or "submit"
//   - outcome: "success", "not_found" or "error"
//   - duration: End-to-end pipeline duration
func (c *Collector) RecordPipeline(pipeline, outcome string, duration time.Duration) {
	if !c.enabled() {
		return
	}

	c.pipelineMetrics.RecordPipeline(pipeline, outcome, duration)
}

// RecordRender records one document rendering.
func (c *Collector) RecordRender(outcome string, duration time.Duration, sizeBytes int) {
	if !c.enabled() {
		return
	}

	c.pipelineMetrics.RecordRender(outcome, duration, sizeBytes)
}

// RecordDelivery records one email delivery attempt.
func (c *Collector) RecordDelivery(outcome string) {
	if !c.enabled() {
		return
	}

	c.pipelineMetrics.RecordDelivery(outcome)
}

// RecordCacheHit records a cache hit.
//
// Parameters:
//   - cacheName: Name of the cache (e.g., "token")
func (c *Collector) RecordCacheHit(cacheName string) {
	if !c.enabled() {
		return
	}

	c.cacheMetrics.RecordHit(cacheName)
}

// RecordCacheMiss records a cache miss.
func (c *Collector) RecordCacheMiss(cacheName string) {
	if !c.enabled() {
		return
	}

	c.cacheMetrics.RecordMiss(cacheName)
}

// RecordCacheInvalidation records an explicit invalidation, such as a
// token dropped after the list store rejected it.
func (c *Collector) RecordCacheInvalidation(cacheName string) {
	if !c.enabled() {
		return
	}

	c.cacheMetrics.RecordInvalidation(cacheName)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
// Returns false if adding this label set would exceed the limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
