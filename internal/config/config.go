package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	Port string

	// MasterPassword is the process-wide key-derivation password for the
	// credential vault. Never persisted.
	MasterPassword string

	// OpenAI configuration. The key here is the global fallback; per-tenant
	// keys live encrypted on the bot row.
	OpenAIAPIKey  string
	OpenAIBaseURL string

	// PublicBaseURL is the absolute URL this service is reachable at, used to
	// build media links for outbound messages.
	PublicBaseURL string

	// GatewaySender is the default messaging-gateway sender address used when
	// a tenant has none configured.
	GatewaySender string

	// StaticDir is where rendered menu documents are written and served from.
	StaticDir string

	// SchedulerSpec is the cron spec for the promotions/reminders worker.
	SchedulerSpec string

	// WebhookRatePerMinute caps inbound webhook calls per tenant.
	WebhookRatePerMinute int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		MasterPassword:       getEnvOrDefault("MASTER_CRYPTO_PASSWORD", ""),
		OpenAIAPIKey:         getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIBaseURL:        getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com"),
		PublicBaseURL:        getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:8080"),
		GatewaySender:        getEnvOrDefault("GATEWAY_SENDER", ""),
		StaticDir:            getEnvOrDefault("STATIC_DIR", "static"),
		SchedulerSpec:        getEnvOrDefault("SCHEDULER_CRON", "* * * * *"),
		WebhookRatePerMinute: getEnvIntOrDefault("WEBHOOK_RATE_PER_MINUTE", 60),
	}
}

// getEnvOrDefault gets environment variable or returns default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault gets environment variable as int or returns default
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
