package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"slidesmith/pkg/admission"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "slidesmith.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearAdmissionEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		EnvRateLimitPerMinute,
		EnvRateLimitPerHour,
		EnvMaxConcurrentRequests,
		EnvMaxConcurrentPerUser,
		EnvOpenRouterAPIKey,
		EnvRedisAddr,
	} {
		t.Setenv(name, "")
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearAdmissionEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Fatalf("listen_addr = %q", cfg.Server.ListenAddr)
	}
	if cfg.Admission.RateLimitPerMinute != admission.DefaultPerMinute {
		t.Fatalf("per-minute default = %d", cfg.Admission.RateLimitPerMinute)
	}
	if cfg.Storage.Driver != "memory" || cfg.Cache.Driver != "memory" {
		t.Fatalf("drivers = %q/%q", cfg.Storage.Driver, cfg.Cache.Driver)
	}
	if cfg.Generator.Backend != "template" || !cfg.Generator.Fallback {
		t.Fatalf("generator defaults = %+v", cfg.Generator)
	}
	if cfg.Ledger.Enabled {
		t.Fatal("ledger should default to disabled")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearAdmissionEnv(t)
	path := writeConfig(t, `
server:
  listen_addr: ":9090"
admission:
  rate_limit_per_minute: 5
  max_concurrent_per_user: 2
storage:
  driver: duckdb
  path: decks.db
cache:
  driver: redis
  redis_addr: localhost:6379
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.ListenAddr != ":9090" {
		t.Fatalf("listen_addr = %q", cfg.Server.ListenAddr)
	}
	if cfg.Admission.RateLimitPerMinute != 5 || cfg.Admission.MaxConcurrentPerUser != 2 {
		t.Fatalf("admission = %+v", cfg.Admission)
	}
	// Untouched sections keep their defaults.
	if cfg.Admission.RateLimitPerHour != admission.DefaultPerHour {
		t.Fatalf("per-hour = %d", cfg.Admission.RateLimitPerHour)
	}
	if cfg.Storage.Driver != "duckdb" || cfg.Storage.Path != "decks.db" {
		t.Fatalf("storage = %+v", cfg.Storage)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" {
		t.Fatalf("cache = %+v", cfg.Cache)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearAdmissionEnv(t)
	path := writeConfig(t, `
admission:
  rate_limit_per_minute: 30
  rate_limit_per_hour: 500
`)
	t.Setenv(EnvRateLimitPerMinute, "7")
	t.Setenv(EnvMaxConcurrentRequests, "40")
	t.Setenv(EnvRedisAddr, "redis:6379")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Admission.RateLimitPerMinute != 7 {
		t.Fatalf("env override lost: per-minute = %d", cfg.Admission.RateLimitPerMinute)
	}
	if cfg.Admission.RateLimitPerHour != 500 {
		t.Fatalf("file value lost: per-hour = %d", cfg.Admission.RateLimitPerHour)
	}
	if cfg.Admission.MaxConcurrentRequests != 40 {
		t.Fatalf("max concurrent = %d", cfg.Admission.MaxConcurrentRequests)
	}
	if cfg.Cache.RedisAddr != "redis:6379" {
		t.Fatalf("redis addr = %q", cfg.Cache.RedisAddr)
	}
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	clearAdmissionEnv(t)
	path := writeConfig(t, `
server:
  listen_adr: ":9090"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("misspelled key should fail to load")
	}
}

func TestLoad_RejectsBadEnvInteger(t *testing.T) {
	clearAdmissionEnv(t)
	t.Setenv(EnvRateLimitPerMinute, "sixty")
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), EnvRateLimitPerMinute) {
		t.Fatalf("err = %v, want mention of %s", err, EnvRateLimitPerMinute)
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	clearAdmissionEnv(t)
	cases := []struct {
		name string
		body string
		want string
	}{
		{"unknown storage driver", "storage:\n  driver: postgres\n", "storage.driver"},
		{"redis without addr", "cache:\n  driver: redis\n", "redis_addr"},
		{"openrouter without key", "generator:\n  backend: openrouter\n", "api_key"},
		{"negative limit", "admission:\n  rate_limit_per_hour: -1\n", "rate_limit_per_hour"},
		{"ledger without addresses", "ledger:\n  enabled: true\n", "ledger.addresses"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.body)
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want mention of %q", err, tc.want)
			}
		})
	}
}

func TestLoad_MissingFileFails(t *testing.T) {
	clearAdmissionEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("explicit missing file should fail")
	}
}

func TestAdmissionConfigConversion(t *testing.T) {
	section := Admission{
		RateLimitPerMinute:    9,
		RateLimitPerHour:      90,
		MaxConcurrentRequests: 4,
		MaxConcurrentPerUser:  2,
		IdleTTLMinutes:        90,
	}
	got := section.AdmissionConfig()
	want := admission.Config{
		PerMinute:      9,
		PerHour:        90,
		MaxGlobal:      4,
		MaxPerIdentity: 2,
		IdleTTL:        90 * time.Minute,
	}
	if got != want {
		t.Fatalf("converted = %+v, want %+v", got, want)
	}
}
