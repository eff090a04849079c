package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Environment ("development" or "production")
	Env string

	// Local store
	DBDriver   string // "sqlite" or "postgres"
	DBPath     string // sqlite file path
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Remote document store
	RemoteBaseURL string
	RemoteAPIKey  string
	RemoteTimeout time.Duration

	// Local auth provider
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Default locale for seeded category names
	DefaultLocale string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if present; plain environment variables work too.
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env: getEnv("ENV", "development"),

		DBDriver:   getEnv("DB_DRIVER", "sqlite"),
		DBPath:     getEnv("DB_PATH", "finanzas.db"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "finanzas"),
		DBPassword: getEnv("DB_PASSWORD", "finanzas"),
		DBName:     getEnv("DB_NAME", "finanzas"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RemoteBaseURL: getEnv("REMOTE_BASE_URL", ""),
		RemoteAPIKey:  getEnv("REMOTE_API_KEY", ""),

		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		DefaultLocale: getEnv("DEFAULT_LOCALE", "es"),
	}

	config.RemoteTimeout = getDuration("REMOTE_TIMEOUT", 10*time.Second)
	config.JWTExpirationDur = getDuration("JWT_EXPIRES_IN", 24*time.Hour)

	return config, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration parses a duration environment variable, falling back on error.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}
