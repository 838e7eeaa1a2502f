package config

import (
	"fmt"
	"os"
)

// Config holds all configuration for the application
type Config struct {
	DatabaseURL      string
	Port             string
	LogLevel         string
	ClassifierURL    string
	CategorySeedPath string
	MigrationsPath   string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnvOrDefault("PORT", "8080"),
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
		ClassifierURL:    os.Getenv("CLASSIFIER_URL"),
		CategorySeedPath: os.Getenv("CATEGORY_SEED_PATH"),
		MigrationsPath:   getEnvOrDefault("MIGRATIONS_PATH", "migrations"),
	}

	if cfg.DatabaseURL = os.Getenv("DATABASE_URL"); cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	return cfg, nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
