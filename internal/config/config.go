// Package config handles application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port    int
	BaseURL string

	// Provider API keys
	GeminiAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	// Default models (provider-prefixed ids)
	DefaultTextModel   string
	DefaultVisionModel string

	// LLM call behavior
	LLMTimeout    time.Duration
	LLMMaxRetries int

	// Model discovery cache
	ModelCacheTTL time.Duration

	// Prompting
	DefaultSystemPrompt string
	Timezone            string

	// CORS
	CORSOrigins []string

	// Debug
	DebugMode bool
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:    getEnvInt("PORT", 8080),
		BaseURL: getEnv("BASE_URL", "http://localhost:8080"),

		GeminiAPIKey:    getEnvWithFallback("GEMINI_API_KEY", "GOOGLE_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),

		DefaultTextModel:   getEnv("DEFAULT_TEXT_MODEL", "gemini/gemini-2.5-flash"),
		DefaultVisionModel: getEnv("DEFAULT_VISION_MODEL", "gemini/gemini-2.5-flash"),

		LLMTimeout:    getEnvDuration("LLM_TIMEOUT", 30*time.Second),
		LLMMaxRetries: getEnvInt("LLM_MAX_RETRIES", 1),

		ModelCacheTTL: getEnvDuration("MODEL_CACHE_TTL", time.Hour),

		DefaultSystemPrompt: getEnv("DEFAULT_SYSTEM_PROMPT", ""),
		Timezone:            getEnv("TIMEZONE", "Asia/Tokyo"),

		CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"http://localhost:3000"}),
		DebugMode:   getEnvBool("DEBUG_MODE", false),
	}

	if cfg.LLMMaxRetries < 0 {
		return nil, fmt.Errorf("LLM_MAX_RETRIES must not be negative")
	}

	return cfg, nil
}

// APIKeyFor returns the configured key for a provider, or "".
func (c *Config) APIKeyFor(provider string) string {
	switch provider {
	case "gemini":
		return c.GeminiAPIKey
	case "openai":
		return c.OpenAIAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	}
	return ""
}

// IsProviderAvailable reports whether credentials are configured for the
// provider.
func (c *Config) IsProviderAvailable(provider string) bool {
	return c.APIKeyFor(provider) != ""
}

// HasAnyProvider reports whether at least one provider has credentials.
func (c *Config) HasAnyProvider() bool {
	return c.GeminiAPIKey != "" || c.OpenAIAPIKey != "" || c.AnthropicAPIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "true" || lower == "1" || lower == "yes"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Bare integers are treated as seconds.
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func getEnvWithFallback(primary, fallback, defaultValue string) string {
	if value := os.Getenv(primary); value != "" {
		return value
	}
	if value := os.Getenv(fallback); value != "" {
		return value
	}
	return defaultValue
}
