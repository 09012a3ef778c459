// Package config holds application-level settings loaded from the
// environment.
package config

import (
	"os"
	"strconv"
)

// Config carries the server settings that are not owned by a
// subsystem's own config.
type Config struct {
	// Port the HTTP server listens on.
	Port int
	// DataDir holds the metrics database and other local state.
	DataDir string
	// StaticDir serves the web UI when present.
	StaticDir string
	// BackofficeUser and BackofficePass guard the metrics endpoint.
	BackofficeUser string
	BackofficePass string
}

// DefaultConfig returns settings for local development.
func DefaultConfig() Config {
	return Config{
		Port:           8000,
		DataDir:        "data",
		StaticDir:      "static",
		BackofficeUser: "admin",
		BackofficePass: "admin",
	}
}

// LoadConfig reads settings from environment variables, falling back
// to defaults for anything unset.
func LoadConfig() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("OKRPILOT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Port = port
		}
	}
	if v := os.Getenv("OKRPILOT_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("OKRPILOT_STATIC_DIR"); v != "" {
		cfg.StaticDir = v
	}
	if v := os.Getenv("OKRPILOT_BACKOFFICE_USER"); v != "" {
		cfg.BackofficeUser = v
	}
	if v := os.Getenv("OKRPILOT_BACKOFFICE_PASS"); v != "" {
		cfg.BackofficePass = v
	}
	return cfg
}
