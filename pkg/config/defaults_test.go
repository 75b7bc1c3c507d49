package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"listen address", cfg.Server.ListenAddress, ":3000"},
		{"request timeout", cfg.Server.RequestTimeout, DefaultRequestTimeout},
		{"cors enabled", cfg.Server.CORS.Enabled, true},
		{"authority", cfg.Identity.AuthorityURL, "https://login.microsoftonline.com"},
		{"scope", cfg.Identity.Scope, "https://graph.microsoft.com/.default"},
		{"token cache", cfg.Identity.Cache.Enabled, true},
		{"base url", cfg.ListStore.BaseURL, "https://graph.microsoft.com/v1.0"},
		{"relation field", cfg.ListStore.RelationField, "Customer"},
		{"foreign key field", cfg.ListStore.ForeignKeyField, "Customer-ID"},
		{"parallel resolve", cfg.ListStore.ParallelResolve, true},
		{"no sandbox", cfg.Render.NoSandbox, true},
		{"mail host", cfg.Mail.Host, "smtp.gmail.com"},
		{"mail port", cfg.Mail.Port, 587},
		{"from name", cfg.Mail.FromName, "Shipping Desk"},
		{"subject", cfg.Mail.Subject, "New Shipping Instruction Submission"},
		{"redact secrets", cfg.Telemetry.Logging.RedactSecrets, true},
		{"metrics enabled", cfg.Telemetry.Metrics.Enabled, true},
		{"tracing enabled", cfg.Telemetry.Tracing.Enabled, false},
		{"probe schedule", cfg.Telemetry.Health.ProbeSchedule, "@every 5m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate(Defaults()) = %v, want nil", err)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	first := *cfg
	ApplyDefaults(cfg)

	if cfg.Server.ReadTimeout != first.Server.ReadTimeout {
		t.Errorf("ReadTimeout changed on second call: %v -> %v", first.Server.ReadTimeout, cfg.Server.ReadTimeout)
	}
	if len(cfg.Telemetry.Metrics.RequestDurationBuckets) != len(DefaultRequestDurationBuckets) {
		t.Errorf("buckets = %d, want %d", len(cfg.Telemetry.Metrics.RequestDurationBuckets), len(DefaultRequestDurationBuckets))
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.ReadTimeout = 5 * time.Second
	cfg.Mail.Port = 465

	ApplyDefaults(cfg)

	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
	if cfg.Mail.Port != 465 {
		t.Errorf("Mail.Port = %d, want 465", cfg.Mail.Port)
	}
}

func TestApplyDefaults_BucketsNotShared(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Telemetry.Metrics.RequestDurationBuckets[0] = 42

	if DefaultRequestDurationBuckets[0] == 42 {
		t.Error("ApplyDefaults shares the default bucket slice")
	}
}
