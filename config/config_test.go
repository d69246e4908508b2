package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `server:
  addr: ":8181"
  access_log: true
dataset:
  root: "/data/fleet"
  pattern: "exports/*.csv"
  reload_interval_seconds: 600
influx:
  enabled: true
  url: "http://influx:8086"
  org: "fleet"
  bucket: "telemetry"
client:
  base_url: "http://api:8181"
view:
  refresh_interval_seconds: -1
  fetch_timeout_seconds: 12
metrics:
  prometheus_enabled: true
logging:
  level: "debug"
  format: "console"
sentry:
  dsn: "https://public@example.com/1"
  environment: "staging"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	vc := cfg.View.Controller()
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"server.addr", cfg.Server.Addr, ":8181"},
		{"server.access_log", cfg.Server.AccessLog, true},
		{"server.shutdown_timeout_seconds", cfg.Server.ShutdownTimeoutSecs, 5},
		{"dataset.root", cfg.Dataset.Root, "/data/fleet"},
		{"dataset.pattern", cfg.Dataset.Pattern, "exports/*.csv"},
		{"dataset.reload_interval_seconds", cfg.Dataset.ReloadIntervalSeconds, 600},
		{"influx.enabled", cfg.Influx.Enabled, true},
		{"influx.measurement", cfg.Influx.Measurement, "segment_stats_drive"},
		{"influx.cache_ttl_seconds", cfg.Influx.CacheTTLSeconds, 300},
		{"client.base_url", cfg.Client.BaseURL, "http://api:8181"},
		{"client.timeout_seconds", cfg.Client.TimeoutSeconds, 10},
		{"view.refresh", vc.RefreshInterval, time.Duration(0)},
		{"view.fetch_timeout", vc.FetchTimeout, 12 * time.Second},
		{"metrics.prometheus_enabled", cfg.Metrics.PrometheusEnabled, true},
		{"metrics.prometheus_port", cfg.Metrics.PrometheusPort, ":9090"},
		{"logging.level", cfg.Logging.Level, "debug"},
		{"logging.format", cfg.Logging.Format, "console"},
		{"sentry.environment", cfg.Sentry.Environment, "staging"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Dataset.Pattern != "**/*.csv" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.View.Controller().RefreshInterval != 5*time.Minute {
		t.Fatalf("unexpected refresh interval %v", cfg.View.Controller().RefreshInterval)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"server":{"addr":":1"}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("K_SERVER__ADDR", ":9999")
	t.Setenv("K_DATASET__ROOT", "/mnt/csv")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("addr not overridden: %s", cfg.Server.Addr)
	}
	if cfg.Dataset.Root != "/mnt/csv" {
		t.Errorf("root not overridden: %s", cfg.Dataset.Root)
	}
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"config.toml":    "x = 1",
		"bad_glob.yaml":  "dataset:\n  pattern: \"[\"\n",
		"bad_level.yaml": "logging:\n  level: \"loud\"\n",
		"bad_influx.yml": "influx:\n  enabled: true\n",
		"bad_client.yml": "client:\n  base_url: \"relative/path\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}
