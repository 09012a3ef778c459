package llm

import (
	"os"
	"strconv"
)

// Config holds all configuration for the chat-completion transport.
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	TimeoutMs int
	LogCalls  bool
}

// DefaultConfig returns a Config with sensible defaults. The API key has
// no default and must come from the environment.
func DefaultConfig() Config {
	return Config{
		Model:     "gpt-4o",
		BaseURL:   "https://api.openai.com/v1",
		TimeoutMs: 120000,
	}
}

// LoadConfig reads transport configuration from environment variables,
// falling back to defaults for any unset values. OPENAI_SERVER points
// the client at a compatible self-hosted endpoint.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("OPENAI_SERVER"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("OKRPILOT_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("OKRPILOT_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}

	return cfg
}
