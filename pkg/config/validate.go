package config

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the structure of the configuration and returns a
// ValidationError if any rule fails. Credentials and site coordinates are
// not required here so that offline commands (render, validate) work with
// a partial configuration; see ValidateRuntime.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateIdentity(&cfg.Identity)...)
	errs = append(errs, validateListStore(&cfg.ListStore)...)
	errs = append(errs, validateRender(&cfg.Render)...)
	errs = append(errs, validateMail(&cfg.Mail)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// ValidateRuntime checks the settings the server needs to reach its remote
// collaborators: identity credentials, the site to resolve, the list names
// and the SMTP credentials.
func ValidateRuntime(cfg *Config) error {
	var errs []FieldError

	required := []struct {
		field string
		value string
	}{
		{"identity.tenant_id", cfg.Identity.TenantID},
		{"identity.client_id", cfg.Identity.ClientID},
		{"identity.client_secret", cfg.Identity.ClientSecret},
		{"liststore.site_host", cfg.ListStore.SiteHost},
		{"liststore.site_path", cfg.ListStore.SitePath},
		{"liststore.primary_list", cfg.ListStore.PrimaryList},
		{"liststore.secondary_list", cfg.ListStore.SecondaryList},
		{"mail.username", cfg.Mail.Username},
		{"mail.password", cfg.Mail.Password},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, FieldError{Field: r.field, Message: "value is required"})
		}
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}

	durations := []struct {
		field string
		value int64
	}{
		{"server.read_timeout", int64(cfg.ReadTimeout)},
		{"server.write_timeout", int64(cfg.WriteTimeout)},
		{"server.idle_timeout", int64(cfg.IdleTimeout)},
		{"server.request_timeout", int64(cfg.RequestTimeout)},
		{"server.shutdown_timeout", int64(cfg.ShutdownTimeout)},
	}
	for _, d := range durations {
		if d.value < 0 {
			errs = append(errs, FieldError{Field: d.field, Message: "timeout must be positive"})
		}
	}

	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxBodyBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_body_bytes",
			Message: "max body bytes must be non-negative",
		})
	}

	if cfg.CORS.MaxAge < 0 {
		errs = append(errs, FieldError{
			Field:   "server.cors.max_age",
			Message: "max age must be non-negative",
		})
	}

	return errs
}

func validateIdentity(cfg *IdentityConfig) []FieldError {
	var errs []FieldError

	if err := validateURL(cfg.AuthorityURL); err != "" {
		errs = append(errs, FieldError{Field: "identity.authority_url", Message: err})
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{Field: "identity.timeout", Message: "timeout must be positive"})
	}
	if cfg.Cache.ExpirySkew < 0 {
		errs = append(errs, FieldError{Field: "identity.cache.expiry_skew", Message: "expiry skew must be non-negative"})
	}

	return errs
}

func validateListStore(cfg *ListStoreConfig) []FieldError {
	var errs []FieldError

	if err := validateURL(cfg.BaseURL); err != "" {
		errs = append(errs, FieldError{Field: "liststore.base_url", Message: err})
	}
	if strings.Contains(cfg.SitePath, "/") {
		errs = append(errs, FieldError{
			Field:   "liststore.site_path",
			Message: "site path is the site name below /sites/ and must not contain '/'",
		})
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{Field: "liststore.timeout", Message: "timeout must be positive"})
	}

	return errs
}

func validateRender(cfg *RenderConfig) []FieldError {
	var errs []FieldError

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{Field: "render.timeout", Message: "timeout must be positive"})
	}
	if cfg.NetworkIdleTimeout < 0 {
		errs = append(errs, FieldError{Field: "render.network_idle_timeout", Message: "timeout must be positive"})
	}

	return errs
}

func validateMail(cfg *MailConfig) []FieldError {
	var errs []FieldError

	if cfg.Port <= 0 || cfg.Port > 65535 {
		errs = append(errs, FieldError{
			Field:   "mail.port",
			Message: fmt.Sprintf("invalid port %d: must be between 1 and 65535", cfg.Port),
		})
	}

	validPolicies := map[string]bool{"mandatory": true, "opportunistic": true, "none": true}
	if !validPolicies[cfg.TLSPolicy] {
		errs = append(errs, FieldError{
			Field:   "mail.tls_policy",
			Message: fmt.Sprintf("invalid TLS policy %q: must be 'mandatory', 'opportunistic', or 'none'", cfg.TLSPolicy),
		})
	}

	if cfg.FallbackRecipient != "" {
		if _, err := mail.ParseAddress(cfg.FallbackRecipient); err != nil {
			errs = append(errs, FieldError{
				Field:   "mail.fallback_recipient",
				Message: fmt.Sprintf("invalid address: %v", err),
			})
		}
	}

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{Field: "mail.timeout", Message: "timeout must be positive"})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	// Validate logging level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	// Validate logging format
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with '/'",
		})
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	if cfg.Health.ProbeSchedule != "" {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(cfg.Health.ProbeSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "telemetry.health.probe_schedule",
				Message: fmt.Sprintf("invalid cron schedule: %v", err),
			})
		}
	}

	return errs
}

// validateURL returns a non-empty message when raw is not an absolute
// http(s) URL.
func validateURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Sprintf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Sprintf("invalid URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Sprintf("invalid URL %q: host is required", raw)
	}
	return ""
}
