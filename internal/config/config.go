package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	// Server
	HTTPAddr     string
	CookieSecure bool

	// Redis (only dialled when a shared store is selected)
	RedisAddr string
	RedisPass string

	// Store backends: "memory" (default) or "redis"
	SessionStore   string
	RateLimitStore string

	// Rate limits
	LoginMaxAttempts int
	LoginWindow      time.Duration
	APIMaxRequests   int
	APIWindow        time.Duration

	// Audit
	AuditCap int

	// Background sweep of expired sessions and rate-limit buckets
	SweepInterval time.Duration

	// Blacklist seed file (optional)
	BlacklistSeedFile string

	// Bootstrap administrator
	BootstrapAdminEmail    string
	BootstrapAdminPassword string
	BootstrapAdminName     string
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr:     getEnv("HTTP_ADDR", ":8000"),
		CookieSecure: getEnvBool("COOKIE_SECURE", true),

		RedisAddr: getEnv("REDIS_ADDR", ""),
		RedisPass: getEnv("REDIS_PASS", ""),

		SessionStore:   strings.ToLower(getEnv("SESSION_STORE", "memory")),
		RateLimitStore: strings.ToLower(getEnv("RATE_LIMIT_STORE", "memory")),

		LoginMaxAttempts: getEnvInt("LOGIN_MAX_ATTEMPTS", 5),
		LoginWindow:      getEnvDuration("LOGIN_WINDOW", 15*time.Minute),
		APIMaxRequests:   getEnvInt("API_MAX_REQUESTS", 100),
		APIWindow:        getEnvDuration("API_WINDOW", time.Minute),

		AuditCap: getEnvInt("AUDIT_CAP", 10000),

		SweepInterval: getEnvDuration("SWEEP_INTERVAL", 5*time.Minute),

		BlacklistSeedFile: getEnv("BLACKLIST_SEED_FILE", ""),

		BootstrapAdminEmail:    getEnv("BOOTSTRAP_ADMIN_EMAIL", ""),
		BootstrapAdminPassword: getEnv("BOOTSTRAP_ADMIN_PASSWORD", ""),
		BootstrapAdminName:     getEnv("BOOTSTRAP_ADMIN_NAME", "System Administrator"),
	}
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.ToLower(v) == "true"
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
