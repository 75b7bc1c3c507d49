package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = ":3000"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 120 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultRequestTimeout  = 110 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB
	DefaultMaxBodyBytes    = 5242880 // 5MB

	// CORS defaults
	DefaultCORSEnabled = true
	DefaultCORSMaxAge  = 3600

	// Identity defaults
	DefaultAuthorityURL     = "https://login.microsoftonline.com"
	DefaultScope            = "https://graph.microsoft.com/.default"
	DefaultIdentityTimeout  = 15 * time.Second
	DefaultTokenCache       = true
	DefaultTokenExpirySkew  = 60 * time.Second
	DefaultListStoreBaseURL = "https://graph.microsoft.com/v1.0"

	// List store defaults
	DefaultRelationField    = "Customer"
	DefaultForeignKeyField  = "Customer-ID"
	DefaultParallelResolve  = true
	DefaultListStoreTimeout = 30 * time.Second

	// Render defaults
	DefaultRenderNoSandbox          = true
	DefaultRenderTimeout            = 60 * time.Second
	DefaultRenderNetworkIdleTimeout = 10 * time.Second

	// Mail defaults
	DefaultMailHost      = "smtp.gmail.com"
	DefaultMailPort      = 587
	DefaultMailFromName  = "Shipping Desk"
	DefaultMailSubject   = "New Shipping Instruction Submission"
	DefaultMailTLSPolicy = "mandatory"
	DefaultMailTimeout   = 30 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel         = "info"
	DefaultLoggingFormat        = "json"
	DefaultLoggingRedactSecrets = true
	DefaultMetricsEnabled       = true
	DefaultMetricsPath          = "/metrics"
	DefaultMetricsNamespace     = "shipdesk"
	DefaultMetricsSubsystem     = "gateway"
	DefaultTracingEnabled       = false
	DefaultTracingEndpoint      = "localhost:4317"
	DefaultTracingInsecure      = true
	DefaultTracingServiceName   = "shipdesk-gateway"
	DefaultTracingSampleRatio   = 1.0
	DefaultHealthProbeSchedule  = "@every 5m"
	DefaultHealthProbeTimeout   = 20 * time.Second
)

// DefaultRequestDurationBuckets covers fast list lookups up to browser
// renders and SMTP round trips.
var DefaultRequestDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// Defaults returns a configuration populated with every default, including
// the boolean switches that default to true. LoadConfig decodes the YAML
// file on top of this value so that omitted booleans keep their defaults.
func Defaults() *Config {
	cfg := &Config{}
	cfg.Server.CORS.Enabled = DefaultCORSEnabled
	cfg.Identity.Cache.Enabled = DefaultTokenCache
	cfg.ListStore.ParallelResolve = DefaultParallelResolve
	cfg.Render.NoSandbox = DefaultRenderNoSandbox
	cfg.Telemetry.Logging.RedactSecrets = DefaultLoggingRedactSecrets
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Tracing.Enabled = DefaultTracingEnabled
	cfg.Telemetry.Tracing.Insecure = DefaultTracingInsecure
	cfg.Telemetry.Health.ProbeSchedule = DefaultHealthProbeSchedule
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any non-boolean fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}

	// CORS defaults
	if len(cfg.Server.CORS.AllowedOrigins) == 0 {
		cfg.Server.CORS.AllowedOrigins = []string{"*"}
	}
	if len(cfg.Server.CORS.AllowedMethods) == 0 {
		cfg.Server.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.Server.CORS.AllowedHeaders) == 0 {
		cfg.Server.CORS.AllowedHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if len(cfg.Server.CORS.ExposedHeaders) == 0 {
		cfg.Server.CORS.ExposedHeaders = []string{"X-Request-ID"}
	}
	if cfg.Server.CORS.MaxAge == 0 {
		cfg.Server.CORS.MaxAge = DefaultCORSMaxAge
	}

	// Identity defaults
	if cfg.Identity.AuthorityURL == "" {
		cfg.Identity.AuthorityURL = DefaultAuthorityURL
	}
	if cfg.Identity.Scope == "" {
		cfg.Identity.Scope = DefaultScope
	}
	if cfg.Identity.Timeout == 0 {
		cfg.Identity.Timeout = DefaultIdentityTimeout
	}
	if cfg.Identity.Cache.ExpirySkew == 0 {
		cfg.Identity.Cache.ExpirySkew = DefaultTokenExpirySkew
	}

	// List store defaults
	if cfg.ListStore.BaseURL == "" {
		cfg.ListStore.BaseURL = DefaultListStoreBaseURL
	}
	if cfg.ListStore.RelationField == "" {
		cfg.ListStore.RelationField = DefaultRelationField
	}
	if cfg.ListStore.ForeignKeyField == "" {
		cfg.ListStore.ForeignKeyField = DefaultForeignKeyField
	}
	if cfg.ListStore.Timeout == 0 {
		cfg.ListStore.Timeout = DefaultListStoreTimeout
	}

	// Render defaults
	if cfg.Render.Timeout == 0 {
		cfg.Render.Timeout = DefaultRenderTimeout
	}
	if cfg.Render.NetworkIdleTimeout == 0 {
		cfg.Render.NetworkIdleTimeout = DefaultRenderNetworkIdleTimeout
	}

	// Mail defaults
	if cfg.Mail.Host == "" {
		cfg.Mail.Host = DefaultMailHost
	}
	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = DefaultMailPort
	}
	if cfg.Mail.FromName == "" {
		cfg.Mail.FromName = DefaultMailFromName
	}
	if cfg.Mail.Subject == "" {
		cfg.Mail.Subject = DefaultMailSubject
	}
	if cfg.Mail.TLSPolicy == "" {
		cfg.Mail.TLSPolicy = DefaultMailTLSPolicy
	}
	if cfg.Mail.Timeout == 0 {
		cfg.Mail.Timeout = DefaultMailTimeout
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.RequestDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.RequestDurationBuckets = append([]float64(nil), DefaultRequestDurationBuckets...)
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Health.ProbeTimeout == 0 {
		cfg.Telemetry.Health.ProbeTimeout = DefaultHealthProbeTimeout
	}
}
