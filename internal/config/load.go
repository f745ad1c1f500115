package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Environment variables recognized by applyEnv.
const (
	EnvRateLimitPerMinute    = "RATE_LIMIT_PER_MINUTE"
	EnvRateLimitPerHour      = "RATE_LIMIT_PER_HOUR"
	EnvMaxConcurrentRequests = "MAX_CONCURRENT_REQUESTS"
	EnvMaxConcurrentPerUser  = "MAX_CONCURRENT_PER_USER"
	EnvOpenRouterAPIKey      = "OPENROUTER_API_KEY"
	EnvRedisAddr             = "REDIS_ADDR"
)

// Load builds the effective configuration: defaults, then the YAML file when
// path is non-empty, then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if err := parse(data, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parse decodes a single YAML document into cfg, rejecting unknown fields.
func parse(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("config: parse: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return fmt.Errorf("config: parse: multiple YAML documents are not supported")
		}
		return fmt.Errorf("config: parse: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if err := envInt(EnvRateLimitPerMinute, &cfg.Admission.RateLimitPerMinute); err != nil {
		return err
	}
	if err := envInt(EnvRateLimitPerHour, &cfg.Admission.RateLimitPerHour); err != nil {
		return err
	}
	if err := envInt(EnvMaxConcurrentRequests, &cfg.Admission.MaxConcurrentRequests); err != nil {
		return err
	}
	if err := envInt(EnvMaxConcurrentPerUser, &cfg.Admission.MaxConcurrentPerUser); err != nil {
		return err
	}
	if value := os.Getenv(EnvOpenRouterAPIKey); value != "" {
		cfg.Generator.APIKey = value
	}
	if value := os.Getenv(EnvRedisAddr); value != "" {
		cfg.Cache.RedisAddr = value
	}
	return nil
}

func envInt(name string, target *int) error {
	value := os.Getenv(name)
	if value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("config: %s: %w", name, err)
	}
	*target = parsed
	return nil
}

func validate(cfg Config) error {
	if cfg.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr is required")
	}
	switch cfg.Storage.Driver {
	case "memory", "duckdb":
	default:
		return fmt.Errorf("config: storage.driver %q is not memory or duckdb", cfg.Storage.Driver)
	}
	switch cfg.Cache.Driver {
	case "memory":
	case "redis":
		if cfg.Cache.RedisAddr == "" {
			return fmt.Errorf("config: cache.redis_addr is required with the redis driver")
		}
	default:
		return fmt.Errorf("config: cache.driver %q is not memory or redis", cfg.Cache.Driver)
	}
	switch cfg.Generator.Backend {
	case "template":
	case "openrouter":
		if cfg.Generator.APIKey == "" {
			return fmt.Errorf("config: generator.api_key (or %s) is required with the openrouter backend", EnvOpenRouterAPIKey)
		}
		if cfg.Generator.Model == "" {
			return fmt.Errorf("config: generator.model is required with the openrouter backend")
		}
	default:
		return fmt.Errorf("config: generator.backend %q is not template or openrouter", cfg.Generator.Backend)
	}
	for _, limit := range []struct {
		name  string
		value int
	}{
		{"admission.rate_limit_per_minute", cfg.Admission.RateLimitPerMinute},
		{"admission.rate_limit_per_hour", cfg.Admission.RateLimitPerHour},
		{"admission.max_concurrent_requests", cfg.Admission.MaxConcurrentRequests},
		{"admission.max_concurrent_per_user", cfg.Admission.MaxConcurrentPerUser},
	} {
		if limit.value < 0 {
			return fmt.Errorf("config: %s must not be negative", limit.name)
		}
	}
	if cfg.Ledger.Enabled && len(cfg.Ledger.Addresses) == 0 {
		return fmt.Errorf("config: ledger.addresses is required when the ledger is enabled")
	}
	return nil
}
