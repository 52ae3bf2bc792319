package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  listen_address: "0.0.0.0:9000"
  read_timeout: "60s"

store:
  backend: "sqlite"
  db_path: "./test-routedesk.db"

provider:
  repository: "https://example.com/org/nginx-config.git"
  auth:
    type: "token"
    token: "test-token-123"

worker:
  poll_interval: "5s"
  max_attempts: 3

telemetry:
  logging:
    level: "debug"
    format: "text"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9000" {
		t.Errorf("expected listen address %q, got %q", "0.0.0.0:9000", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 60*time.Second {
		t.Errorf("expected read timeout 60s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Worker.PollInterval != 5*time.Second {
		t.Errorf("expected poll interval 5s, got %v", cfg.Worker.PollInterval)
	}
	if cfg.Worker.MaxAttempts != 3 {
		t.Errorf("expected max attempts 3, got %d", cfg.Worker.MaxAttempts)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.Telemetry.Logging.Level)
	}

	// Unset fields fall back to defaults.
	if cfg.Server.WriteTimeout != 30*time.Second {
		t.Errorf("expected default write timeout 30s, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Provider.ConfigRoot != "nginx" {
		t.Errorf("expected default config root %q, got %q", "nginx", cfg.Provider.ConfigRoot)
	}
	if cfg.Worker.RecordTimeout != 60*time.Second {
		t.Errorf("expected default record timeout 60s, got %v", cfg.Worker.RecordTimeout)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("server: [not a map"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Token auth without a token must be rejected.
	configContent := `
provider:
  repository: "https://example.com/org/nginx-config.git"
  auth:
    type: "token"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "provider.auth.token") {
		t.Errorf("expected token validation error, got: %v", err)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  listen_address: "127.0.0.1:8090"
provider:
  repository: "https://example.com/org/nginx-config.git"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("ROUTEDESK_SERVER_LISTEN_ADDRESS", "0.0.0.0:7070")
	t.Setenv("ROUTEDESK_WORKER_POLL_INTERVAL", "2s")

	cfg, err := LoadConfigWithEnvOverrides(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:7070" {
		t.Errorf("expected env override to win, got %q", cfg.Server.ListenAddress)
	}
	if cfg.Worker.PollInterval != 2*time.Second {
		t.Errorf("expected poll interval 2s, got %v", cfg.Worker.PollInterval)
	}
}

func TestValidate_Defaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider.Repository = "https://example.com/org/nginx-config.git"

	if err := Validate(cfg); err != nil {
		t.Errorf("default config with repository set should validate, got: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			name:    "missing repository",
			mutate:  func(cfg *Config) { cfg.Provider.Repository = "" },
			wantSub: "provider.repository",
		},
		{
			name:    "bad listen address",
			mutate:  func(cfg *Config) { cfg.Server.ListenAddress = "no-port" },
			wantSub: "server.listen_address",
		},
		{
			name:    "bad store backend",
			mutate:  func(cfg *Config) { cfg.Store.Backend = "postgres" },
			wantSub: "store.backend",
		},
		{
			name:    "zero poll interval",
			mutate:  func(cfg *Config) { cfg.Worker.PollInterval = -time.Second },
			wantSub: "worker.poll_interval",
		},
		{
			name:    "bad log level",
			mutate:  func(cfg *Config) { cfg.Telemetry.Logging.Level = "loud" },
			wantSub: "telemetry.logging.level",
		},
		{
			name:    "config root traversal",
			mutate:  func(cfg *Config) { cfg.Provider.ConfigRoot = "../etc" },
			wantSub: "provider.config_root",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Provider.Repository = "https://example.com/org/nginx-config.git"
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("expected error mentioning %q, got: %v", tt.wantSub, err)
			}
		})
	}
}
