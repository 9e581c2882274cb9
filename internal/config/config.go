package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string
	Environment    string
	AirtableAPIURL string
	AirtableBaseID string
	AirtableToken  string
	RedisURL       string // optional, empty disables caching
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: ParseOrigins(getEnv("ALLOWED_ORIGINS", "*")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Environment:    getEnv("ENVIRONMENT", "production"),
		AirtableAPIURL: getEnv("AIRTABLE_API_URL", "https://api.airtable.com/v0"),
		AirtableBaseID: getEnv("AIRTABLE_BASE_ID", ""),
		AirtableToken:  getEnv("AIRTABLE_TOKEN", ""),
		RedisURL:       getEnv("REDIS_URL", ""),
	}

	if cfg.AirtableBaseID == "" {
		return nil, fmt.Errorf("AIRTABLE_BASE_ID is required")
	}
	if cfg.AirtableToken == "" {
		return nil, fmt.Errorf("AIRTABLE_TOKEN is required")
	}

	return cfg, nil
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// ParseOrigins parses comma-separated origins into a slice
func ParseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
