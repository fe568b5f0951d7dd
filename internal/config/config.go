// Package config loads Queue Service configuration from the environment,
// with optional command-line flag overrides bound via cobra (see
// cmd/queue).
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds the Queue Service's runtime configuration.
type Config struct {
	// Environment (e.g. "production", "staging"); empty means unset.
	Env string

	// Database
	DatabaseURL string

	// Bus
	NATSURL        string
	NATSRPCTimeout time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// Metrics
	MetricsAddr string

	// Scale-target cache (optional; empty URL disables it)
	ScaleTargetCacheURL string
	ScaleTargetCacheTTL time.Duration
}

// Load reads configuration from the environment. DATABASE_URL is
// required; every other field has a default.
func Load() (*Config, error) {
	databaseURL := getEnv("DATABASE_URL", "")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	natsURL := getEnv("NATS_URL", "nats://localhost:4222")

	rpcTimeout, err := getEnvDuration("NATS_RPC_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("NATS_RPC_TIMEOUT: %w", err)
	}

	cacheTTL, err := getEnvDuration("SCALE_TARGET_CACHE_TTL", 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SCALE_TARGET_CACHE_TTL: %w", err)
	}

	return &Config{
		Env:                 getEnv("ENV", ""),
		DatabaseURL:         databaseURL,
		NATSURL:             natsURL,
		NATSRPCTimeout:      rpcTimeout,
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
		MetricsAddr:         getEnv("METRICS_ADDR", ":9090"),
		ScaleTargetCacheURL: getEnv("SCALE_TARGET_CACHE_URL", ""),
		ScaleTargetCacheTTL: cacheTTL,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", value, err)
	}
	return d, nil
}
