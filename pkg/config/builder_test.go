package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a new ConfigBuilder with a complete runtime
// configuration. The resulting configuration passes both Validate and
// ValidateRuntime.
func NewTestConfig() *ConfigBuilder {
	cfg := Defaults()

	cfg.Identity.TenantID = "tenant-123"
	cfg.Identity.ClientID = "client-abc"
	cfg.Identity.ClientSecret = "s3cret"
	cfg.ListStore.SiteHost = "contoso.sharepoint.com"
	cfg.ListStore.SitePath = "logistics"
	cfg.ListStore.PrimaryList = "Bookings"
	cfg.ListStore.SecondaryList = "Clients"
	cfg.Mail.Username = "desk@example.com"
	cfg.Mail.Password = "app-password"
	cfg.Mail.FallbackRecipient = "ops@example.com"

	return &ConfigBuilder{cfg: *cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithListenAddress sets the server listen address.
func (b *ConfigBuilder) WithListenAddress(addr string) *ConfigBuilder {
	b.cfg.Server.ListenAddress = addr
	return b
}

// WithRequestTimeout sets the per-request timeout.
func (b *ConfigBuilder) WithRequestTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.Server.RequestTimeout = d
	return b
}

// WithLists sets the primary and secondary list names.
func (b *ConfigBuilder) WithLists(primary, secondary string) *ConfigBuilder {
	b.cfg.ListStore.PrimaryList = primary
	b.cfg.ListStore.SecondaryList = secondary
	return b
}

// WithMailPort sets the SMTP port.
func (b *ConfigBuilder) WithMailPort(port int) *ConfigBuilder {
	b.cfg.Mail.Port = port
	return b
}

// WithLoggingLevel sets the logging level.
func (b *ConfigBuilder) WithLoggingLevel(level string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	return b
}

// WithProbeSchedule sets the readiness probe schedule.
func (b *ConfigBuilder) WithProbeSchedule(schedule string) *ConfigBuilder {
	b.cfg.Telemetry.Health.ProbeSchedule = schedule
	return b
}
