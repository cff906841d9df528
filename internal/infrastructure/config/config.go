package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Database configuration
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	// Server configuration
	ServerPort int

	// SeedDefaults controls whether the default scope and clients are
	// created on startup.
	SeedDefaults bool
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		DBHost:       "localhost",
		DBPort:       5432,
		DBUser:       "",
		DBPassword:   "",
		DBName:       "",
		ServerPort:   8080,
		SeedDefaults: true,
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env from project root
	_ = godotenv.Load()

	return &Config{
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnvInt("DB_PORT", 5432),
		DBUser:       getEnv("DB_USER", "oidc"),
		DBPassword:   getEnv("DB_PASSWORD", "oidc"),
		DBName:       getEnv("DB_NAME", "oidc_store"),
		ServerPort:   getEnvInt("PORT", 8080),
		SeedDefaults: getEnvBool("SEED_DEFAULTS", true),
	}, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}
