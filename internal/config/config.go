package config

import (
	"os"
	"time"
)

// DefaultModel is stored for users who have not picked a model in settings.
const DefaultModel = "gemini-3-pro-preview"

// DevJWTSecret is the fallback signing secret for local development.
// main warns loudly when it is in use.
const DevJWTSecret = "gemini-web-app-secret-key-2026"

type Config struct {
	// Server
	Port        string
	CORSOrigins string

	// Database
	DBPath string

	// JWT
	JWTSecret   string
	TokenExpiry time.Duration

	// Upstream Gemini API
	UpstreamBaseURL string
	UpstreamTimeout time.Duration
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "3000"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		DBPath: getEnv("DB_PATH", "data.db"),

		JWTSecret:   getEnv("JWT_SECRET", DevJWTSecret),
		TokenExpiry: parseDuration(getEnv("TOKEN_EXPIRY", "720h"), 720*time.Hour),

		UpstreamBaseURL: getEnv("GEMINI_PROXY", "https://aibot.techmaninfo.ltd/gemini"),
		UpstreamTimeout: parseDuration(getEnv("UPSTREAM_TIMEOUT", "30s"), 30*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
