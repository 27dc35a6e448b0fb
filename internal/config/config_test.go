package config

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/multierr"
)

func TestFromEnv_ParsesAndDefaults(t *testing.T) {
	t.Setenv("API_ADDR", ":9090")
	t.Setenv("LOG_DIR", "./_testlogs")
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "statuspulse.db")
	t.Setenv("PROBE_TIMEOUT_MS", "1234")
	t.Setenv("MAX_CONCURRENT_CHECKS", "7")
	t.Setenv("INCIDENT_CAP", "100")
	t.Setenv("DETAILED_RETENTION", "24h")
	t.Setenv("ADMIN_RPM", "33")
	t.Setenv("ADMIN_BURST", "44")
	t.Setenv("SITES", `[{"id":"a","name":"A","url":"https://a.example"}]`)

	cfg := FromEnv()

	if cfg.Addr != ":9090" || cfg.LogDir != "./_testlogs" {
		t.Fatalf("addr/logdir wrong: %+v", cfg)
	}
	if cfg.StoreDriver != "sqlite" || cfg.DatabaseURL != "statuspulse.db" {
		t.Fatalf("store wrong: %q %q", cfg.StoreDriver, cfg.DatabaseURL)
	}
	if cfg.ProbeTimeout != 1234*time.Millisecond || cfg.Concurrency != 7 {
		t.Fatalf("probe settings wrong: %+v", cfg)
	}
	if cfg.IncidentCap != 100 || cfg.DetailedRetention != 24*time.Hour || cfg.HourlyRetention != 31*24*time.Hour {
		t.Fatalf("policy wrong: %+v", cfg)
	}
	if cfg.AdminRPM != 33 || cfg.AdminBurst != 44 {
		t.Fatalf("rate limit wrong: %+v", cfg)
	}
	if len(cfg.Sites) != 1 || cfg.Sites[0].ID != "a" {
		t.Fatalf("sites wrong: %+v", cfg.Sites)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()
	if cfg.SnapshotKey != "uptime_data" || cfg.UserAgent != "StatusPulse/1.0" || cfg.CheckSchedule != "@every 5m" {
		t.Fatalf("defaults wrong: %+v", cfg)
	}
	if len(cfg.Sites) != len(DefaultSites) {
		t.Fatalf("want compiled-in sites, got %d", len(cfg.Sites))
	}
	cfg.Sites[0].Name = "changed"
	if DefaultSites[0].Name == "changed" {
		t.Fatalf("config aliases DefaultSites")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PROBE_TIMEOUT_MS", "0")
	t.Setenv("HOURLY_RETENTION", "1h")
	t.Setenv("SITES", "not json")

	err := FromEnv().Validate()
	if err == nil {
		t.Fatalf("want validation errors")
	}
	errs := multierr.Errors(err)
	if len(errs) != 4 {
		t.Fatalf("want 4 errors, got %d: %v", len(errs), err)
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("missing DSN error: %v", err)
	}
}
