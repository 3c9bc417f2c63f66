// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	IGAPIKey          string
	IGUsername        string
	IGPassword        string
	IGBaseURL         string
	MarketMapPath     string // Optional override for the embedded market→epic mapping
	RefreshSchedule   string // cron spec for the positions refresh job, empty disables it
	LogLevel          string
	Port              int
	DevMode           bool
	EnrichConcurrency int
	DefaultVolatility float64 // Fallback volatility when the IV solver fails to converge
	RiskFreeRate      float64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnvAsInt("PORT", 8080),
		DevMode:           getEnvAsBool("DEV_MODE", false),
		IGAPIKey:          getEnv("IG_API_KEY", ""),
		IGUsername:        getEnv("IG_USERNAME", ""),
		IGPassword:        getEnv("IG_PASSWORD", ""),
		IGBaseURL:         getEnv("IG_BASE_URL", "https://demo-api.ig.com/gateway/deal"),
		MarketMapPath:     getEnv("MARKET_MAP_PATH", ""),
		RefreshSchedule:   getEnv("REFRESH_SCHEDULE", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		EnrichConcurrency: getEnvAsInt("ENRICH_CONCURRENCY", 4),
		DefaultVolatility: getEnvAsFloat("DEFAULT_VOLATILITY", 0.20),
		RiskFreeRate:      getEnvAsFloat("RISK_FREE_RATE", 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.IGBaseURL == "" {
		return fmt.Errorf("IG_BASE_URL is required")
	}
	if c.EnrichConcurrency < 1 {
		return fmt.Errorf("ENRICH_CONCURRENCY must be at least 1")
	}
	if c.DefaultVolatility <= 0 {
		return fmt.Errorf("DEFAULT_VOLATILITY must be positive")
	}

	// Note: IG credentials are optional at startup; the session endpoint
	// can authenticate later.
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
