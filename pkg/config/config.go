package config

import "time"

// Config is the root configuration structure for the Shipdesk gateway.
// It contains all configuration sections for the HTTP server, the identity
// provider, the list store, document rendering, mail delivery and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and CORS settings.
	Server ServerConfig `yaml:"server"`

	// Identity contains the client-credentials settings used to obtain
	// bearer tokens for the list store.
	Identity IdentityConfig `yaml:"identity"`

	// ListStore contains the list store endpoint, the site to resolve and
	// the list names the read pipelines operate on.
	ListStore ListStoreConfig `yaml:"liststore"`

	// Render contains headless browser settings for PDF generation.
	Render RenderConfig `yaml:"render"`

	// Mail contains the SMTP relay credentials and message defaults.
	Mail MailConfig `yaml:"mail"`

	// Telemetry contains configuration for logging, metrics, tracing and
	// health probing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:3000", ":3000").
	// Default: ":3000"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Submissions launch a browser and talk to an SMTP relay, so
	// this must be larger than render.timeout + mail.timeout.
	// Default: 120s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// RequestTimeout bounds the whole pipeline of a single request. The
	// request context is cancelled when it elapses.
	// Default: 110s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes limits the size of the submission body.
	// Default: 5242880 (5MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration for the
	// browser form.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins for CORS requests.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods for CORS requests.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers for CORS requests.
	// Default: ["Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of headers that are exposed to the client.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the maximum age (in seconds) for preflight request cache.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}

// IdentityConfig contains the OAuth2 client-credentials settings.
type IdentityConfig struct {
	// AuthorityURL is the identity provider base URL. The token endpoint is
	// {authority_url}/{tenant_id}/oauth2/v2.0/token.
	// Default: "https://login.microsoftonline.com"
	AuthorityURL string `yaml:"authority_url"`

	// TenantID is the directory (tenant) identifier.
	TenantID string `yaml:"tenant_id"`

	// ClientID is the application (client) identifier.
	ClientID string `yaml:"client_id"`

	// ClientSecret is the application secret. Prefer the CLIENT_SECRET or
	// SHIPDESK_IDENTITY_CLIENT_SECRET environment variables.
	ClientSecret string `yaml:"client_secret"`

	// Scope is the resource scope requested for every token.
	// Default: "https://graph.microsoft.com/.default"
	Scope string `yaml:"scope"`

	// Timeout bounds a single token exchange.
	// Default: 15s
	Timeout time.Duration `yaml:"timeout"`

	// Cache configures token reuse between requests.
	Cache TokenCacheConfig `yaml:"cache"`
}

// TokenCacheConfig configures the expiry-aware token cache.
type TokenCacheConfig struct {
	// Enabled controls whether tokens are reused until they expire. When
	// false every pipeline run performs its own token exchange.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// ExpirySkew is subtracted from the token expiry so a token is never
	// handed out moments before it lapses.
	// Default: 60s
	ExpirySkew time.Duration `yaml:"expiry_skew"`
}

// ListStoreConfig contains configuration for the remote list store.
type ListStoreConfig struct {
	// BaseURL is the REST API root.
	// Default: "https://graph.microsoft.com/v1.0"
	BaseURL string `yaml:"base_url"`

	// SiteHost is the SharePoint host name (e.g., "contoso.sharepoint.com").
	SiteHost string `yaml:"site_host"`

	// SitePath is the site name below /sites/ (e.g., "Operations").
	SitePath string `yaml:"site_path"`

	// PrimaryList is the display name of the booking list items are read from.
	PrimaryList string `yaml:"primary_list"`

	// SecondaryList is the display name of the client list related records
	// are queried from.
	SecondaryList string `yaml:"secondary_list"`

	// RelationField is the field of a primary item holding the foreign key.
	// Default: "Customer"
	RelationField string `yaml:"relation_field"`

	// ForeignKeyField is the field of the secondary list matched against
	// the relation value. Special characters are encoded the way the list
	// store encodes internal column names.
	// Default: "Customer-ID"
	ForeignKeyField string `yaml:"foreign_key_field"`

	// ParallelResolve resolves the primary and secondary lists concurrently
	// in the related-records pipeline.
	// Default: true
	ParallelResolve bool `yaml:"parallel_resolve"`

	// Timeout bounds a single list store call.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`
}

// RenderConfig contains configuration for HTML to PDF rendering.
type RenderConfig struct {
	// ChromePath is the browser executable. Empty lets chromedp locate one.
	ChromePath string `yaml:"chrome_path"`

	// NoSandbox passes --no-sandbox and --disable-setuid-sandbox, required
	// when running as root inside containers.
	// Default: true
	NoSandbox bool `yaml:"no_sandbox"`

	// Timeout bounds the whole render, from browser launch to PDF bytes.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// NetworkIdleTimeout bounds the wait for network activity to settle
	// after the document content is loaded.
	// Default: 10s
	NetworkIdleTimeout time.Duration `yaml:"network_idle_timeout"`
}

// MailConfig contains the SMTP relay configuration.
type MailConfig struct {
	// Host is the SMTP relay host.
	// Default: "smtp.gmail.com"
	Host string `yaml:"host"`

	// Port is the SMTP relay port.
	// Default: 587
	Port int `yaml:"port"`

	// Username authenticates against the relay and is the sender address.
	Username string `yaml:"username"`

	// Password authenticates against the relay.
	Password string `yaml:"password"`

	// FromName is the sender display name.
	// Default: "Shipping Desk"
	FromName string `yaml:"from_name"`

	// Subject is the message subject.
	// Default: "New Shipping Instruction Submission"
	Subject string `yaml:"subject"`

	// FallbackRecipient receives the message when the submission carries no
	// user email.
	FallbackRecipient string `yaml:"fallback_recipient"`

	// TLSPolicy is one of "mandatory", "opportunistic" or "none".
	// Default: "mandatory"
	TLSPolicy string `yaml:"tls_policy"`

	// Timeout bounds dialing and sending.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains readiness probing configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains configuration for structured logging.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in logs.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactSecrets masks bearer tokens, secrets and passwords in log
	// attributes.
	// Default: true
	RedactSecrets bool `yaml:"redact_secrets"`
}

// MetricsConfig contains configuration for Prometheus metrics.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path of the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "shipdesk"
	Namespace string `yaml:"namespace"`

	// Subsystem is the second metric name segment.
	// Default: "gateway"
	Subsystem string `yaml:"subsystem"`

	// RequestDurationBuckets are histogram buckets in seconds for HTTP
	// requests and upstream calls.
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// TracingConfig contains configuration for OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector address (host:port).
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS towards the collector.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "shipdesk-gateway"
	ServiceName string `yaml:"service_name"`

	// SampleRatio is the fraction of traces sampled (0.0 - 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`
}

// HealthConfig contains configuration for the readiness prober.
type HealthConfig struct {
	// ProbeSchedule is a cron expression (robfig/cron syntax, descriptors
	// such as "@every 1m" allowed). Empty disables probing.
	// Default: "@every 5m"
	ProbeSchedule string `yaml:"probe_schedule"`

	// ProbeTimeout bounds a single probe run.
	// Default: 20s
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
}
