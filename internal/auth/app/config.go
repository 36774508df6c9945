package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseFile string // Optional: path to SQLite database file (default: ./pressroom.db)
	BaseURL      string // Optional: base URL for links in outbound email (default: http://localhost:8080)
	TokenSecret  string // Required in prod: HMAC secret for verification/reset tokens
	Issuer       string // Optional: issuer claim on verification/reset tokens

	SendGridAPIKey string // Optional: if unset, email is logged instead of sent
	EmailFromName  string // Optional: sender display name
	EmailFromAddr  string // Optional: sender address

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "pressroom.db"),
		BaseURL:      getEnvOrDefault("AUTH_BASE_URL", "http://localhost:8080"),
		TokenSecret:  os.Getenv("AUTH_TOKEN_SECRET"),
		Issuer:       getEnvOrDefault("AUTH_ISSUER", "pressroom-auth"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		EmailFromName:  getEnvOrDefault("EMAIL_FROM_NAME", "Pressroom"),
		EmailFromAddr:  getEnvOrDefault("EMAIL_FROM_ADDR", "no-reply@pressroom.local"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
