package config

import (
	"fmt"
	"os"
)

// Config holds all application configuration
type Config struct {
	DatabaseDriver string
	DatabaseURL    string
	Port           string
	BaseURL        string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseDriver: getEnv("DB_DRIVER", "postgres"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		Port:           getEnv("PORT", "8080"),
		BaseURL:        getEnv("BASE_URL", "http://localhost:8080"),
	}

	switch cfg.DatabaseDriver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when DB_DRIVER is postgres")
		}
	case "sqlite":
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = "potluck.db"
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (expected postgres or sqlite)", cfg.DatabaseDriver)
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
