package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds process-level application configuration
type Config struct {
	Port             int
	DevMode          bool
	LogLevel         string
	DatabasePath     string
	CacheBackend     string // "memory" or "sqlite"
	MarketDataPath   string // JSON file consumed by the static market-data provider
	ReassessSchedule string // Cron spec for the periodic reassessment job
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnvAsInt("PORT", 8010),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DatabasePath:     getEnv("DATABASE_PATH", "./data/fx-sentinel.db"),
		CacheBackend:     getEnv("CACHE_BACKEND", "memory"),
		MarketDataPath:   getEnv("MARKET_DATA_PATH", "./data/market.json"),
		ReassessSchedule: getEnv("REASSESS_SCHEDULE", "0 0 */6 * * *"), // Every 6 hours
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.CacheBackend != "memory" && c.CacheBackend != "sqlite" {
		return fmt.Errorf("CACHE_BACKEND must be \"memory\" or \"sqlite\", got %q", c.CacheBackend)
	}
	if c.CacheBackend == "sqlite" && c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required for the sqlite cache backend")
	}
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
