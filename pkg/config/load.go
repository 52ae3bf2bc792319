package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is unmarshalled over a fully-defaulted configuration, so absent
// fields keep their defaults while explicit values (including explicit
// false) override them. The result is validated before being returned.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	// Re-apply defaults for fields the file set to zero values.
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow the
// naming convention ROUTEDESK_SECTION_FIELD (e.g.,
// ROUTEDESK_SERVER_LISTEN_ADDRESS) and always take precedence over
// file-based configuration.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Variables use the format ROUTEDESK_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("ROUTEDESK_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("ROUTEDESK_STORE_DB_PATH"); val != "" {
		cfg.Store.DBPath = val
	}
	if val := os.Getenv("ROUTEDESK_AUDIT_DB_PATH"); val != "" {
		cfg.Audit.DBPath = val
	}
	if val := os.Getenv("ROUTEDESK_PROVIDER_REPOSITORY"); val != "" {
		cfg.Provider.Repository = val
	}
	if val := os.Getenv("ROUTEDESK_PROVIDER_LOCAL_PATH"); val != "" {
		cfg.Provider.LocalPath = val
	}
	if val := os.Getenv("ROUTEDESK_PROVIDER_AUTH_TOKEN"); val != "" {
		cfg.Provider.Auth.Type = "token"
		cfg.Provider.Auth.Token = val
	}
	if val := os.Getenv("ROUTEDESK_WORKER_POLL_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Worker.PollInterval = d
		}
	}
	if val := os.Getenv("ROUTEDESK_WORKER_MAX_ATTEMPTS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			cfg.Worker.MaxAttempts = n
		}
	}
	if val := os.Getenv("ROUTEDESK_RULES_PATH"); val != "" {
		cfg.Rules.Path = val
	}
	if val := os.Getenv("ROUTEDESK_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
}
