// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Default simulation sizing. MaxSims bounds HTTP requests because working
// memory grows with n_sims x risk count.
const (
	DefaultSims = 50_000
	DefaultMax  = 1_000_000
)

// Config holds application configuration
type Config struct {
	Port        int
	LogLevel    string
	DevMode     bool
	DefaultSims int // Trial count used when a request omits n_sims
	MaxSims     int // Upper bound on per-request trial count
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:        8080,
		LogLevel:    getEnv("RISKQUANT_LOG_LEVEL", "info"),
		DevMode:     os.Getenv("RISKQUANT_DEV_MODE") == "true",
		DefaultSims: DefaultSims,
		MaxSims:     DefaultMax,
	}

	if v := os.Getenv("RISKQUANT_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RISKQUANT_PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("RISKQUANT_DEFAULT_SIMS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid RISKQUANT_DEFAULT_SIMS %q", v)
		}
		cfg.DefaultSims = n
	}

	if v := os.Getenv("RISKQUANT_MAX_SIMS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid RISKQUANT_MAX_SIMS %q", v)
		}
		cfg.MaxSims = n
	}

	if cfg.DefaultSims > cfg.MaxSims {
		return nil, fmt.Errorf("default sims %d exceeds max sims %d", cfg.DefaultSims, cfg.MaxSims)
	}

	return cfg, nil
}

// getEnv retrieves an environment variable value, returning a fallback if the
// variable is not set or is empty.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
