package config

import (
	"fmt"
	"net"
	"strings"
)

// Validate checks the configuration for errors. It returns the first
// problem found, with enough context to locate the offending field.
func Validate(cfg *Config) error {
	if err := validateServer(&cfg.Server); err != nil {
		return err
	}
	if err := validateStore(&cfg.Store); err != nil {
		return err
	}
	if err := validateProvider(&cfg.Provider); err != nil {
		return err
	}
	if err := validateWorker(&cfg.Worker); err != nil {
		return err
	}
	if err := validateTelemetry(&cfg.Telemetry); err != nil {
		return err
	}
	return nil
}

func validateServer(cfg *ServerConfig) error {
	if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		return fmt.Errorf("server.listen_address %q is not a valid host:port: %w", cfg.ListenAddress, err)
	}
	if cfg.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must not be negative")
	}
	return nil
}

func validateStore(cfg *StoreConfig) error {
	switch cfg.Backend {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("store.backend %q is not supported (want \"sqlite\" or \"memory\")", cfg.Backend)
	}
	if cfg.Backend == "sqlite" && cfg.DBPath == "" {
		return fmt.Errorf("store.db_path must be set for the sqlite backend")
	}
	return nil
}

func validateProvider(cfg *ProviderConfig) error {
	if cfg.Repository == "" {
		return fmt.Errorf("provider.repository must be set")
	}
	switch cfg.Auth.Type {
	case "none", "token", "ssh":
	default:
		return fmt.Errorf("provider.auth.type %q is not supported (want \"none\", \"token\", or \"ssh\")", cfg.Auth.Type)
	}
	if cfg.Auth.Type == "token" && cfg.Auth.Token == "" {
		return fmt.Errorf("provider.auth.token must be set for token auth")
	}
	if cfg.Auth.Type == "ssh" && cfg.Auth.SSHKeyPath == "" {
		return fmt.Errorf("provider.auth.ssh_key_path must be set for ssh auth")
	}
	if strings.Contains(cfg.ConfigRoot, "..") {
		return fmt.Errorf("provider.config_root must not contain path traversal")
	}
	return nil
}

func validateWorker(cfg *WorkerConfig) error {
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("worker.poll_interval must be positive")
	}
	if cfg.MaxAttempts <= 0 {
		return fmt.Errorf("worker.max_attempts must be positive")
	}
	if cfg.RecordTimeout <= 0 {
		return fmt.Errorf("worker.record_timeout must be positive")
	}
	return nil
}

func validateTelemetry(cfg *TelemetryConfig) error {
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("telemetry.logging.level %q is not supported", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("telemetry.logging.format %q is not supported", cfg.Logging.Format)
	}
	return nil
}
