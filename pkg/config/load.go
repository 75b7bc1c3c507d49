package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is decoded on top of Defaults, so omitted settings keep their
// default values. The configuration is validated before it is returned.
// Environment variables are not consulted; use LoadConfigWithEnvOverrides
// for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	// Fields explicitly set to empty values in the file fall back to defaults
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. A missing file is not an error: the
// gateway is commonly deployed with environment variables only, in which
// case defaults plus the environment form the configuration.
//
// The loading sequence is:
// 1. Load YAML from file (or start from Defaults when the file is absent)
// 2. Apply environment variable overrides
// 3. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = Defaults()
	} else {
		loaded, err := LoadConfig(path)
		switch {
		case err == nil:
			cfg = loaded
		case errors.Is(err, fs.ErrNotExist):
			cfg = Defaults()
		default:
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Variables use the format SHIPDESK_SECTION_FIELD. The plain names used by
// the form backend deployments (CLIENT_ID, SHAREPOINT_SITE_HOST, SMTP_USER,
// PORT, ...) are honored as well; the prefixed names win when both are set.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("PORT"); val != "" {
		cfg.Server.ListenAddress = ":" + val
	}
	setString(&cfg.Server.ListenAddress, "SHIPDESK_SERVER_LISTEN_ADDRESS")
	setDuration(&cfg.Server.ReadTimeout, "SHIPDESK_SERVER_READ_TIMEOUT")
	setDuration(&cfg.Server.WriteTimeout, "SHIPDESK_SERVER_WRITE_TIMEOUT")
	setDuration(&cfg.Server.IdleTimeout, "SHIPDESK_SERVER_IDLE_TIMEOUT")
	setDuration(&cfg.Server.RequestTimeout, "SHIPDESK_SERVER_REQUEST_TIMEOUT")
	setDuration(&cfg.Server.ShutdownTimeout, "SHIPDESK_SERVER_SHUTDOWN_TIMEOUT")
	setBool(&cfg.Server.CORS.Enabled, "SHIPDESK_SERVER_CORS_ENABLED")
	if val := os.Getenv("SHIPDESK_SERVER_CORS_ALLOWED_ORIGINS"); val != "" {
		cfg.Server.CORS.AllowedOrigins = splitList(val)
	}

	// Identity overrides
	setString(&cfg.Identity.TenantID, "TENANT_ID", "SHIPDESK_IDENTITY_TENANT_ID")
	setString(&cfg.Identity.ClientID, "CLIENT_ID", "SHIPDESK_IDENTITY_CLIENT_ID")
	setString(&cfg.Identity.ClientSecret, "CLIENT_SECRET", "SHIPDESK_IDENTITY_CLIENT_SECRET")
	setString(&cfg.Identity.AuthorityURL, "SHIPDESK_IDENTITY_AUTHORITY_URL")
	setString(&cfg.Identity.Scope, "SHIPDESK_IDENTITY_SCOPE")
	setDuration(&cfg.Identity.Timeout, "SHIPDESK_IDENTITY_TIMEOUT")
	setBool(&cfg.Identity.Cache.Enabled, "SHIPDESK_IDENTITY_CACHE_ENABLED")

	// List store overrides
	setString(&cfg.ListStore.SiteHost, "SHAREPOINT_SITE_HOST", "SHIPDESK_LISTSTORE_SITE_HOST")
	setString(&cfg.ListStore.SitePath, "SHAREPOINT_SITE_PATH", "SHIPDESK_LISTSTORE_SITE_PATH")
	setString(&cfg.ListStore.PrimaryList, "SHAREPOINT_LIST_NAME", "SHIPDESK_LISTSTORE_PRIMARY_LIST")
	setString(&cfg.ListStore.SecondaryList, "SHAREPOINT_LIST_NAME2", "SHIPDESK_LISTSTORE_SECONDARY_LIST")
	setString(&cfg.ListStore.BaseURL, "SHIPDESK_LISTSTORE_BASE_URL")
	setString(&cfg.ListStore.RelationField, "SHIPDESK_LISTSTORE_RELATION_FIELD")
	setString(&cfg.ListStore.ForeignKeyField, "SHIPDESK_LISTSTORE_FOREIGN_KEY_FIELD")
	setBool(&cfg.ListStore.ParallelResolve, "SHIPDESK_LISTSTORE_PARALLEL_RESOLVE")
	setDuration(&cfg.ListStore.Timeout, "SHIPDESK_LISTSTORE_TIMEOUT")

	// Render overrides
	setString(&cfg.Render.ChromePath, "CHROME_BIN", "SHIPDESK_RENDER_CHROME_PATH")
	setBool(&cfg.Render.NoSandbox, "SHIPDESK_RENDER_NO_SANDBOX")
	setDuration(&cfg.Render.Timeout, "SHIPDESK_RENDER_TIMEOUT")

	// Mail overrides
	setString(&cfg.Mail.Username, "SMTP_USER", "SHIPDESK_MAIL_USERNAME")
	setString(&cfg.Mail.Password, "SMTP_PASS", "SHIPDESK_MAIL_PASSWORD")
	setString(&cfg.Mail.FallbackRecipient, "FALLBACK_RECIPIENT", "SHIPDESK_MAIL_FALLBACK_RECIPIENT")
	setString(&cfg.Mail.Host, "SHIPDESK_MAIL_HOST")
	setInt(&cfg.Mail.Port, "SHIPDESK_MAIL_PORT")
	setString(&cfg.Mail.TLSPolicy, "SHIPDESK_MAIL_TLS_POLICY")
	setDuration(&cfg.Mail.Timeout, "SHIPDESK_MAIL_TIMEOUT")

	// Telemetry overrides
	setString(&cfg.Telemetry.Logging.Level, "SHIPDESK_TELEMETRY_LOGGING_LEVEL")
	setString(&cfg.Telemetry.Logging.Format, "SHIPDESK_TELEMETRY_LOGGING_FORMAT")
	setBool(&cfg.Telemetry.Metrics.Enabled, "SHIPDESK_TELEMETRY_METRICS_ENABLED")
	setString(&cfg.Telemetry.Metrics.Path, "SHIPDESK_TELEMETRY_METRICS_PATH")
	setBool(&cfg.Telemetry.Tracing.Enabled, "SHIPDESK_TELEMETRY_TRACING_ENABLED")
	setString(&cfg.Telemetry.Tracing.Endpoint, "SHIPDESK_TELEMETRY_TRACING_ENDPOINT")
	if val := os.Getenv("SHIPDESK_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
	setString(&cfg.Telemetry.Health.ProbeSchedule, "SHIPDESK_TELEMETRY_HEALTH_PROBE_SCHEDULE")
}

// setString assigns the value of the last non-empty variable in names.
func setString(dst *string, names ...string) {
	for _, name := range names {
		if val := os.Getenv(name); val != "" {
			*dst = val
		}
	}
}

func setDuration(dst *time.Duration, name string) {
	if val := os.Getenv(name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

func setBool(dst *bool, name string) {
	if val := os.Getenv(name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func setInt(dst *int, name string) {
	if val := os.Getenv(name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
