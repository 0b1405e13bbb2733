package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

//nolint:gocyclo
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `engine:
  history_size: 20
  scoring:
    vehicle:
      engine_temp_max: 105
  maintenance:
    crew_capacity: 3
    min_tier: high
  emergency:
    base_hold: 45s
dispatcher:
  vehicle_interval: 2s
feed:
  fixture: "fleet.yaml"
  loop: true
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "cli"
  username: "user"
  password: "pass"
  qos:
    notify: 1
relay:
  enabled: true
notify:
  min_severity: warning
  sinks:
    - type: "journal"
      conf:
        backend: sqlite
        path: alerts.db
metrics:
  sinks:
    - type: "nop"
  prometheus_addr: ":9100"
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"history_size", cfg.Engine.HistorySize, 20},
		{"engine_temp_max", cfg.Engine.Scoring.Vehicle.EngineTempMax, 105.0},
		{"crew_capacity", cfg.Engine.Maintenance.CrewCapacity, 3},
		{"min_tier", cfg.Engine.Maintenance.MinTier, "high"},
		{"base_hold", cfg.Engine.Emergency.BaseHold, 45 * time.Second},
		{"vehicle_interval", cfg.Dispatcher.VehicleInterval, 2 * time.Second},
		{"traffic_interval default", cfg.Dispatcher.TrafficInterval, 10 * time.Second},
		{"feed.source", cfg.Feed.Source, FeedFixture},
		{"feed.loop", cfg.Feed.Loop, true},
		{"telemetry prefix default", cfg.Feed.Telemetry.Prefix, "sensors"},
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"qos", cfg.MQTT.QoS["notify"], byte(1)},
		{"relay.prefix", cfg.Relay.Prefix, "traffic"},
		{"notify.min_severity", string(cfg.Notify.MinSeverity), "warning"},
		{"notify.sink", cfg.Notify.Sinks[0].Type, "journal"},
		{"notify.sink.path", cfg.Notify.Sinks[0].Conf["path"], "alerts.db"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"prometheus_addr", cfg.Metrics.PrometheusAddr, ":9100"},
		{"logging.level", cfg.Logging.Level, "debug"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("K_ENGINE__HISTORY_SIZE", "7")
	t.Setenv("K_LOGGING__LEVEL", "warn")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Engine.HistorySize != 7 {
		t.Fatalf("expected history 7, got %d", cfg.Engine.HistorySize)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected warn, got %s", cfg.Logging.Level)
	}
	if cfg.Feed.Source != FeedNone {
		t.Fatalf("expected no feed, got %s", cfg.Feed.Source)
	}
}

func TestLoadKeepsExplicitZeroPenalties(t *testing.T) {
	t.Setenv("K_ENGINE__SCORING__VEHICLE__MILEAGE_PENALTY", "0")
	t.Setenv("K_ENGINE__MAINTENANCE__OVERHEAD_RATE", "0")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	v := cfg.Engine.Scoring.Vehicle
	if v.MileagePenalty == nil || *v.MileagePenalty != 0 {
		t.Fatalf("expected mileage penalty disabled, got %v", v.MileagePenalty)
	}
	if v.AgePenalty == nil || *v.AgePenalty != 0.2 {
		t.Fatalf("expected default age penalty, got %v", v.AgePenalty)
	}
	if r := cfg.Engine.Maintenance.OverheadRate; r == nil || *r != 0 {
		t.Fatalf("expected zero overhead, got %v", r)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"relay without broker": "relay:\n  enabled: true\n",
		"bad level":            "logging:\n  level: loud\n",
		"bad source":           "feed:\n  source: kafka\n",
		"bad traffic":          "engine:\n  traffic:\n    max_reduction: 150\n",
	}
	for name, body := range cases {
		path := filepath.Join(dir, strings.ReplaceAll(name, " ", "_")+".yaml")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
	if _, err := Load(filepath.Join(dir, "config.toml")); err == nil {
		t.Fatal("expected unsupported format error")
	}
}
