package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string

	// APIBaseURL is the scheduling backend this portal talks to.
	APIBaseURL  string
	HTTPTimeout time.Duration

	// Sibling portals for role-based redirects.
	DoctorPortalURL string
	AdminPortalURL  string

	// Credential persistence. When RedisAddr is set the credential is kept
	// in redis, otherwise in a local file at TokenFile.
	TokenFile     string
	RedisAddr     string
	RedisPassword string

	// Startup session resolution retry policy for transient failures.
	SessionRetryAttempts  int
	SessionRetryBaseDelay time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),

		APIBaseURL:  strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:3000"), "/"),
		HTTPTimeout: getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),

		DoctorPortalURL: strings.TrimRight(getEnv("DOCTOR_PORTAL_URL", "http://localhost:5174"), "/"),
		AdminPortalURL:  strings.TrimRight(getEnv("ADMIN_PORTAL_URL", "http://localhost:5175"), "/"),

		TokenFile:     getEnv("TOKEN_FILE", ".portal-token"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		SessionRetryAttempts:  getEnvAsInt("SESSION_RETRY_ATTEMPTS", 3),
		SessionRetryBaseDelay: getEnvAsDuration("SESSION_RETRY_BASE_DELAY", 2*time.Second),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
