package openai

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
)

// Config holds OpenAI-compatible LLM configuration for the runner's fixed
// low-temperature JSON-contract Agent calls (spec.md §9 "temperature 0-0.2").
type Config struct {
	APIKey      string   // API key for authentication
	BaseURL     string   // Base URL (default: https://api.openai.com/v1)
	Model       string   // Model name (default: gpt-4o-mini)
	Temperature *float32 // 0.0-0.2, nil = runner default of 0.1
	MaxTokens   int      // Max tokens in response, 0 = no limit
	MaxRetries  int      // retries after any completion-request error (default: 1)
	HTTPTimeout int      // HTTP client timeout in seconds (default: 120)
}

// NewConfigFromEnv creates Config from environment variables.
// Expected env vars: OPENAI_API_KEY, OPENAI_BASE_URL, OPENAI_MODEL,
// OPENAI_TEMPERATURE, OPENAI_MAX_TOKENS, OPENAI_MAX_RETRIES, OPENAI_HTTP_TIMEOUT.
func NewConfigFromEnv() (*Config, error) {
	config := &Config{
		APIKey:      getEnvOrDefault("OPENAI_API_KEY", ""),
		BaseURL:     getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		Model:       getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		Temperature: getEnvFloat32Ptr("OPENAI_TEMPERATURE"),
		MaxTokens:   getEnvIntOrDefault("OPENAI_MAX_TOKENS", 0),
		MaxRetries:  getEnvIntOrDefault("OPENAI_MAX_RETRIES", 1),
		HTTPTimeout: getEnvIntOrDefault("OPENAI_HTTP_TIMEOUT", 120),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required. Set it in .env or environment")
	}
	if c.Model == "" {
		return fmt.Errorf("OPENAI_MODEL cannot be empty")
	}
	if c.Temperature != nil && (*c.Temperature < 0.0 || *c.Temperature > 0.2) {
		return fmt.Errorf("OPENAI_TEMPERATURE must be between 0.0 and 0.2 for agent determinism, got %f", *c.Temperature)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("OPENAI_MAX_RETRIES cannot be negative, got %d", c.MaxRetries)
	}
	return nil
}

// ResolveTemperature returns the effective sampling temperature.
func (c *Config) ResolveTemperature() float32 {
	if c.Temperature != nil {
		return *c.Temperature
	}
	return 0.1
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvFloat32Ptr(key string) *float32 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			f := float32(parsed)
			return &f
		}
		slog.Warn("config: invalid value, ignoring", "key", key, "value", v)
	}
	return nil
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
		slog.Warn("config: invalid value, using default", "key", key, "value", v, "default", defaultValue)
	}
	return defaultValue
}
