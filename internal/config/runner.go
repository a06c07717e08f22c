package config

import (
	"fmt"
	"os"
)

// RunnerConfig is the full set of environment-driven settings the CLI
// entrypoint needs to wire a Run: the two fixed collaborator endpoints plus
// a debug flag (spec.md §1 "collaborators"). LLM provider settings are
// loaded separately by openai.NewConfigFromEnv.
type RunnerConfig struct {
	MCPWebURL  string // browser/UI collaborator streamable-HTTP endpoint
	MCPDataURL string // backing data-service collaborator streamable-HTTP endpoint
	Debug      bool
}

// LoadRunnerConfig reads MCP_WEB_URL, MCP_DATA_URL and DEBUG_RUNNER from the
// environment, applying the defaults a local dev setup expects.
func LoadRunnerConfig() (*RunnerConfig, error) {
	cfg := &RunnerConfig{
		MCPWebURL:  getEnvOrDefault("MCP_WEB_URL", "http://localhost:7001"),
		MCPDataURL: getEnvOrDefault("MCP_DATA_URL", "http://localhost:7002"),
		Debug:      os.Getenv("DEBUG_RUNNER") == "1" || os.Getenv("DEBUG_RUNNER") == "true",
	}
	if cfg.MCPWebURL == "" {
		return nil, fmt.Errorf("config: MCP_WEB_URL must not be empty")
	}
	if cfg.MCPDataURL == "" {
		return nil, fmt.Errorf("config: MCP_DATA_URL must not be empty")
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
