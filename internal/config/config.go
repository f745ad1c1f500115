package config

import (
	"time"

	"slidesmith/pkg/admission"
)

// Config is the slidesmithd configuration. Every field has a default, so the
// daemon runs with no file at all; environment variables override both.
type Config struct {
	Server    Server    `yaml:"server"`
	Admission Admission `yaml:"admission"`
	Storage   Storage   `yaml:"storage"`
	Cache     Cache     `yaml:"cache"`
	Generator Generator `yaml:"generator"`
	Ledger    Ledger    `yaml:"ledger"`
}

// Server holds the HTTP listener settings.
type Server struct {
	ListenAddr      string `yaml:"listen_addr"`
	ShutdownSeconds int    `yaml:"shutdown_seconds"`
}

// Admission mirrors the admission layer's limits. Zero values fall back to
// the layer's own defaults.
type Admission struct {
	RateLimitPerMinute    int `yaml:"rate_limit_per_minute"`
	RateLimitPerHour      int `yaml:"rate_limit_per_hour"`
	MaxConcurrentRequests int `yaml:"max_concurrent_requests"`
	MaxConcurrentPerUser  int `yaml:"max_concurrent_per_user"`
	IdleTTLMinutes        int `yaml:"idle_ttl_minutes"`
}

// AdmissionConfig converts the section into the admission layer's Config.
func (a Admission) AdmissionConfig() admission.Config {
	return admission.Config{
		PerMinute:      a.RateLimitPerMinute,
		PerHour:        a.RateLimitPerHour,
		MaxGlobal:      a.MaxConcurrentRequests,
		MaxPerIdentity: a.MaxConcurrentPerUser,
		IdleTTL:        time.Duration(a.IdleTTLMinutes) * time.Minute,
	}
}

// Storage selects the presentation store.
type Storage struct {
	// Driver is "memory" or "duckdb".
	Driver string `yaml:"driver"`
	// Path is the snapshot file for memory or the database file for duckdb.
	// Empty keeps memory unpersisted and duckdb in-memory.
	Path string `yaml:"path"`
}

// Cache selects the cache layers' backing.
type Cache struct {
	// Driver is "memory" or "redis".
	Driver        string `yaml:"driver"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// Generator selects the slide generation backend.
type Generator struct {
	// Backend is "template" or "openrouter".
	Backend           string  `yaml:"backend"`
	Model             string  `yaml:"model"`
	APIKey            string  `yaml:"api_key"`
	BaseURL           string  `yaml:"base_url"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	// Fallback degrades openrouter failures to template output.
	Fallback bool `yaml:"fallback"`
}

// Ledger configures TigerBeetle usage accounting. Disabled by default.
type Ledger struct {
	Enabled             bool     `yaml:"enabled"`
	ClusterID           string   `yaml:"cluster_id"`
	Addresses           []string `yaml:"addresses"`
	Sessions            int      `yaml:"sessions"`
	MaxBatchEvents      int      `yaml:"max_batch_events"`
	FlushIntervalMicros int      `yaml:"flush_interval_micros"`
	QueueSize           int      `yaml:"queue_size"`
}

// FlushInterval converts the microsecond setting to a duration.
func (l Ledger) FlushInterval() time.Duration {
	if l.FlushIntervalMicros <= 0 {
		return 0
	}
	return time.Duration(l.FlushIntervalMicros) * time.Microsecond
}

// Default returns the configuration slidesmithd runs with when given nothing.
func Default() Config {
	return Config{
		Server: Server{
			ListenAddr:      ":8080",
			ShutdownSeconds: 5,
		},
		Admission: Admission{
			RateLimitPerMinute:    admission.DefaultPerMinute,
			RateLimitPerHour:      admission.DefaultPerHour,
			MaxConcurrentRequests: admission.DefaultMaxGlobal,
			MaxConcurrentPerUser:  admission.DefaultMaxPerIdentity,
			IdleTTLMinutes:        int(admission.DefaultIdleTTL / time.Minute),
		},
		Storage: Storage{Driver: "memory"},
		Cache:   Cache{Driver: "memory"},
		Generator: Generator{
			Backend:  "template",
			Model:    "openai/gpt-4o-mini",
			Fallback: true,
		},
		Ledger: Ledger{
			ClusterID: "0",
			QueueSize: 1024,
		},
	}
}
