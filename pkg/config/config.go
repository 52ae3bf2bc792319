package config

import "time"

// Config is the root configuration structure for RouteDesk.
// It contains all configuration sections for the API server, the
// change-request store, the audit log, the version-control provider,
// the background worker, validation rules, and telemetry.
type Config struct {
	// Server contains HTTP API server configuration including listen
	// address, timeouts, and CORS settings.
	Server ServerConfig `yaml:"server"`

	// Store contains configuration for the change-request store.
	Store StoreConfig `yaml:"store"`

	// Audit contains configuration for the append-only audit log.
	Audit AuditConfig `yaml:"audit"`

	// Provider contains configuration for the version-control provider
	// that holds the authoritative proxy configuration.
	Provider ProviderConfig `yaml:"provider"`

	// Worker contains configuration for the background reconciliation
	// worker that drains queued change requests.
	Worker WorkerConfig `yaml:"worker"`

	// Rules contains configuration for the validation rule set.
	Rules RulesConfig `yaml:"rules"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8090").
	// Default: "127.0.0.1:8090"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of
	// the response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next
	// request when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown before in-flight requests are dropped.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// CORS contains Cross-Origin Resource Sharing configuration for the
	// portal frontend.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods.
	// Default: ["GET", "POST", "DELETE", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`
}

// StoreConfig contains configuration for the change-request store.
type StoreConfig struct {
	// Backend selects the storage backend: "sqlite" or "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// DBPath is the path to the SQLite database file.
	// Default: "routedesk.db"
	DBPath string `yaml:"db_path"`

	// BusyTimeout is how long SQLite waits for locks before failing.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// AuditConfig contains configuration for the audit log.
type AuditConfig struct {
	// Enabled controls whether audit events are recorded.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the audit SQLite database file.
	// Default: "routedesk-audit.db"
	DBPath string `yaml:"db_path"`
}

// ProviderConfig contains configuration for the version-control provider.
type ProviderConfig struct {
	// Repository is the URL of the Git repository holding the proxy
	// configuration (HTTPS or SSH), or a local path for testing.
	Repository string `yaml:"repository"`

	// LocalPath is where the repository is mirrored locally.
	// Default: a "routedesk-repo" directory under the OS temp directory.
	LocalPath string `yaml:"local_path"`

	// BaseBranch is the branch holding the committed configuration.
	// Review branches are cut from it.
	// Default: "main"
	BaseBranch string `yaml:"base_branch"`

	// Auth contains authentication settings for the remote.
	Auth AuthConfig `yaml:"auth"`

	// ConfigRoot is the directory inside the repository that holds the
	// per-environment, per-team configuration fragments.
	// Default: "nginx"
	ConfigRoot string `yaml:"config_root"`

	// OperationTimeout bounds each remote Git operation (fetch, pull,
	// push).
	// Default: 30s
	OperationTimeout time.Duration `yaml:"operation_timeout"`
}

// AuthConfig contains Git authentication settings.
type AuthConfig struct {
	// Type selects the authentication method: "none", "token", or "ssh".
	// Default: "none"
	Type string `yaml:"type"`

	// Token is the personal access token for HTTPS token auth.
	Token string `yaml:"token"`

	// SSHKeyPath is the path to the private key for SSH auth.
	SSHKeyPath string `yaml:"ssh_key_path"`

	// SSHPassphrase is the optional passphrase for the private key.
	SSHPassphrase string `yaml:"ssh_passphrase"`
}

// WorkerConfig contains configuration for the background worker.
type WorkerConfig struct {
	// Enabled controls whether the worker runs alongside the server.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// PollInterval is the fixed cadence between queue sweeps. There is
	// no backoff; retries rely on this cadence plus the health gate.
	// Default: 10s
	PollInterval time.Duration `yaml:"poll_interval"`

	// MaxAttempts is how many sweeps may fail against one record before
	// it is marked FAILED instead of retried.
	// Default: 5
	MaxAttempts int `yaml:"max_attempts"`

	// RecordTimeout bounds the processing of a single change request
	// within a sweep.
	// Default: 60s
	RecordTimeout time.Duration `yaml:"record_timeout"`
}

// RulesConfig contains configuration for the validation rule set.
type RulesConfig struct {
	// Path is an optional YAML file overriding the built-in rules
	// (forbidden directives, forbidden prefixes, directive allow-list,
	// scope prefix templates). Empty means built-in rules only.
	Path string `yaml:"path"`

	// Watch enables hot-reload of the rules file on change.
	// Default: false
	Watch bool `yaml:"watch"`

	// NginxBinary is the path to the nginx binary used for the delegated
	// dry-run syntax check. Empty means look up "nginx" on PATH; a
	// missing binary skips the dry run.
	NginxBinary string `yaml:"nginx_binary"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether the /metrics endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the Prometheus metric namespace.
	// Default: "routedesk"
	Namespace string `yaml:"namespace"`
}
