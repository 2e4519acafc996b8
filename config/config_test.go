package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", "telemetry:\n  backend: memory\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Forecast.LookbackDays != 7 || cfg.Forecast.HorizonHours != 72 {
		t.Fatalf("forecast defaults: %+v", cfg.Forecast)
	}
	if cfg.Mitigation.MaxPlans != 3 {
		t.Fatalf("mitigation defaults: %+v", cfg.Mitigation)
	}
	if cfg.Narrator.MaxRetries != 2 || cfg.Narrator.TimeoutSeconds != 30 {
		t.Fatalf("narrator defaults: %+v", cfg.Narrator)
	}
	if cfg.Pipeline.Workers != 4 {
		t.Fatalf("pipeline defaults: %+v", cfg.Pipeline)
	}
	if cfg.Telemetry.Backend != "memory" {
		t.Fatalf("telemetry backend: %q", cfg.Telemetry.Backend)
	}
	if cfg.Prometheus.Addr != ":9090" {
		t.Fatalf("prometheus defaults: %+v", cfg.Prometheus)
	}
}

func TestLoadYAMLValues(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
forecast:
  lookback_days: 14
  horizon_hours: 24
pipeline:
  workers: 8
  min_risk_score: 0.5
metrics:
  sinks:
    - type: prometheus
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Forecast.LookbackDays != 14 || cfg.Forecast.HorizonHours != 24 {
		t.Fatalf("forecast values: %+v", cfg.Forecast)
	}
	if cfg.Pipeline.Workers != 8 || cfg.Pipeline.MinRiskScore != 0.5 {
		t.Fatalf("pipeline values: %+v", cfg.Pipeline)
	}
	if len(cfg.Metrics.Sinks) != 1 || cfg.Metrics.Sinks[0].Type != "prometheus" {
		t.Fatalf("metrics sinks: %+v", cfg.Metrics.Sinks)
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := writeConfig(t, "config.toml", "x = 1\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLoadValidatesTelemetryBackend(t *testing.T) {
	path := writeConfig(t, "config.yaml", "telemetry:\n  backend: cassandra\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.yaml", "forecast:\n  lookback_days: 7\n")
	t.Setenv("G_FORECAST__LOOKBACK_DAYS", "3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Forecast.LookbackDays != 3 {
		t.Fatalf("env override ignored: %+v", cfg.Forecast)
	}
}
