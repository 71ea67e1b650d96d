package config

import (
	"os"
)

// Config holds all configuration for the conflict service
type Config struct {
	// Server configuration
	Port string

	// Directory holding the bundled layer GeoJSON files
	DataDir string

	// Database configuration (optional; history is disabled when DBHost
	// is empty)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:    getEnv("PORT", "8080"),
		DataDir: getEnv("DATA_DIR", "data"),

		DBHost:     getEnv("DB_HOST", ""),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "server"),
		DBPassword: getEnv("DB_PASSWORD", "secret"),
		DBName:     getEnv("DB_NAME", "conflicts"),
	}
}

// HistoryEnabled reports whether the optional analysis-history store is
// configured.
func (c *Config) HistoryEnabled() bool {
	return c.DBHost != ""
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
