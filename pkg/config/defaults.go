package config

import (
	"os"
	"path/filepath"
	"time"
)

// ApplyDefaults fills in default values for any configuration fields
// that were not set. It modifies the configuration in place.
func ApplyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyStoreDefaults(&cfg.Store)
	applyAuditDefaults(&cfg.Audit)
	applyProviderDefaults(&cfg.Provider)
	applyWorkerDefaults(&cfg.Worker)
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = "127.0.0.1:8090"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 120 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}
	if len(cfg.CORS.AllowedMethods) == 0 {
		cfg.CORS.AllowedMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	}
}

func applyStoreDefaults(cfg *StoreConfig) {
	if cfg.Backend == "" {
		cfg.Backend = "sqlite"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "routedesk.db"
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
}

func applyAuditDefaults(cfg *AuditConfig) {
	if cfg.DBPath == "" {
		cfg.DBPath = "routedesk-audit.db"
	}
}

func applyProviderDefaults(cfg *ProviderConfig) {
	if cfg.LocalPath == "" {
		cfg.LocalPath = filepath.Join(os.TempDir(), "routedesk-repo")
	}
	if cfg.BaseBranch == "" {
		cfg.BaseBranch = "main"
	}
	if cfg.ConfigRoot == "" {
		cfg.ConfigRoot = "nginx"
	}
	if cfg.OperationTimeout == 0 {
		cfg.OperationTimeout = 30 * time.Second
	}
	if cfg.Auth.Type == "" {
		cfg.Auth.Type = "none"
	}
}

func applyWorkerDefaults(cfg *WorkerConfig) {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 10 * time.Second
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.RecordTimeout == 0 {
		cfg.RecordTimeout = 60 * time.Second
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "routedesk"
	}
}

// DefaultConfig returns a configuration with all defaults applied and
// the boolean gates that default to on enabled.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.CORS.Enabled = true
	cfg.Audit.Enabled = true
	cfg.Worker.Enabled = true
	cfg.Telemetry.Metrics.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}
