package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Database configuration
	DatabaseURL string

	// Cache configuration
	RedisURL string

	// Object storage configuration (DigitalOcean Spaces or any S3-compatible
	// endpoint)
	SpaceName            string
	SpaceRegion          string
	SpaceEndpoint        string
	SpaceAccessKey       string
	SpaceSecretKey       string
	PresignExpiryMinutes int

	// Inference configuration
	OpenAIAPIKey           string
	OpenAIModel            string
	MappingCatalogLimit    int
	MappingCatalogMaxBytes int

	// Auth configuration
	JWTSecret string

	// Rate limiting per client IP; zero disables a window
	RateLimitHourly int
	RateLimitDaily  int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                   getEnv("PORT", "3000"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		RedisURL:               getEnv("REDIS_URL", "redis://redis:6379/0"),
		SpaceName:              getEnv("DO_SPACE_NAME", "standards-storage"),
		SpaceRegion:            getEnv("DO_SPACE_REGION", "nyc3"),
		SpaceEndpoint:          getEnv("DO_SPACE_ENDPOINT", "https://nyc3.digitaloceanspaces.com"),
		SpaceAccessKey:         getEnv("DO_ACCESS_KEY", ""),
		SpaceSecretKey:         getEnv("DO_SECRET_KEY", ""),
		PresignExpiryMinutes:   getEnvAsInt("PRESIGN_EXPIRY_MINUTES", 60),
		OpenAIAPIKey:           getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:            getEnv("OPENAI_MODEL", "gpt-4o"),
		MappingCatalogLimit:    getEnvAsInt("MAPPING_CATALOG_LIMIT", 500),
		MappingCatalogMaxBytes: getEnvAsInt("MAPPING_CATALOG_MAX_BYTES", 262144),
		JWTSecret:              getEnv("JWT_SECRET", ""),
		RateLimitHourly:        getEnvAsInt("RATE_LIMIT_HOURLY", 30),
		RateLimitDaily:         getEnvAsInt("RATE_LIMIT_DAILY", 100),
	}

	// Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// Default returns a configuration with every default value and no environment
// lookups. Tests use it so they never depend on the host environment.
func Default() *Config {
	return &Config{
		Port:                   "3000",
		RedisURL:               "redis://redis:6379/0",
		SpaceName:              "standards-storage",
		SpaceRegion:            "nyc3",
		SpaceEndpoint:          "https://nyc3.digitaloceanspaces.com",
		PresignExpiryMinutes:   60,
		OpenAIModel:            "gpt-4o",
		MappingCatalogLimit:    500,
		MappingCatalogMaxBytes: 262144,
		RateLimitHourly:        30,
		RateLimitDaily:         100,
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
