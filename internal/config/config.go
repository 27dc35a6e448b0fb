package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/multierr"

	"github.com/hamed0406/statuspulse/internal/domain"
)

type Config struct {
	Addr     string // API bind address, e.g., "127.0.0.1:8080" or ":8080" (Docker)
	LogDir   string // logs directory
	LogLevel string // debug, info, warn, error

	StoreDriver string // memory, sqlite or postgres
	DatabaseURL string // sqlite file path or postgres DSN
	SnapshotKey string
	SitesKey    string
	Sites       []domain.Site // static list used until one is stored

	CheckSchedule string // cron spec or descriptor; "off" disables
	ProbeTimeout  time.Duration
	UserAgent     string
	Concurrency   int

	IncidentCap       int
	DetailedRetention time.Duration
	HourlyRetention   time.Duration

	AdminPasswordHash string
	AdminRPM          int
	AdminBurst        int
}

// DefaultSites is the compiled-in target list.
var DefaultSites = []domain.Site{
	{ID: "google", Name: "Google", URL: "https://google.com"},
	{ID: "github", Name: "GitHub", URL: "https://github.com"},
	{ID: "facebook", Name: "Facebook", URL: "https://facebook.com"},
	{ID: "hibas-oldal", Name: "Teszt Hiba", URL: "https://ez-biztosan-nem-letezik.hu"},
}

func FromEnv() Config {
	cfg := Config{
		Addr:     getEnv("API_ADDR", "127.0.0.1:8080"),
		LogDir:   getEnv("LOG_DIR", "logs"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "memory")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SnapshotKey: getEnv("SNAPSHOT_KEY", "uptime_data"),
		SitesKey:    getEnv("SITES_KEY", "sites"),
		Sites:       append([]domain.Site(nil), DefaultSites...),

		CheckSchedule: getEnv("CHECK_SCHEDULE", "@every 5m"),
		ProbeTimeout:  getEnvMillis("PROBE_TIMEOUT_MS", 5*time.Second),
		UserAgent:     getEnv("USER_AGENT", "StatusPulse/1.0"),
		Concurrency:   getEnvInt("MAX_CONCURRENT_CHECKS", 4),

		IncidentCap:       getEnvInt("INCIDENT_CAP", 50),
		DetailedRetention: getEnvDuration("DETAILED_RETENTION", 7*24*time.Hour),
		HourlyRetention:   getEnvDuration("HOURLY_RETENTION", 31*24*time.Hour),

		AdminPasswordHash: strings.TrimSpace(os.Getenv("ADMIN_PASSWORD_HASH")),
		AdminRPM:          getEnvInt("ADMIN_RPM", 30),
		AdminBurst:        getEnvInt("ADMIN_BURST", 10),
	}

	// SITES overrides the compiled-in list; a malformed value is reported
	// by Validate instead of being silently ignored.
	if v := strings.TrimSpace(os.Getenv("SITES")); v != "" {
		var sites []domain.Site
		if err := json.Unmarshal([]byte(v), &sites); err != nil {
			cfg.Sites = nil
		} else {
			cfg.Sites = sites
		}
	}
	return cfg
}

// Validate reports every problem with cfg at once.
func (c Config) Validate() error {
	var err error
	switch c.StoreDriver {
	case "memory":
	case "sqlite", "postgres":
		if c.DatabaseURL == "" {
			err = multierr.Append(err, fmt.Errorf("DATABASE_URL is required for STORE_DRIVER=%s", c.StoreDriver))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.SnapshotKey == "" || c.SitesKey == "" {
		err = multierr.Append(err, errors.New("SNAPSHOT_KEY and SITES_KEY must be set"))
	}
	if c.SnapshotKey != "" && c.SnapshotKey == c.SitesKey {
		err = multierr.Append(err, errors.New("SNAPSHOT_KEY and SITES_KEY must differ"))
	}
	if c.Sites == nil {
		err = multierr.Append(err, errors.New("SITES is not a valid JSON list of {id,name,url}"))
	}
	if c.ProbeTimeout <= 0 {
		err = multierr.Append(err, errors.New("PROBE_TIMEOUT_MS must be positive"))
	}
	if c.Concurrency < 1 {
		err = multierr.Append(err, errors.New("MAX_CONCURRENT_CHECKS must be at least 1"))
	}
	if c.IncidentCap < 1 {
		err = multierr.Append(err, errors.New("INCIDENT_CAP must be at least 1"))
	}
	if c.DetailedRetention <= 0 {
		err = multierr.Append(err, errors.New("DETAILED_RETENTION must be positive"))
	}
	if c.HourlyRetention <= c.DetailedRetention {
		err = multierr.Append(err, errors.New("HOURLY_RETENTION must be longer than DETAILED_RETENTION"))
	}
	return err
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvMillis(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
