package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"routedesk-hq/routedesk/pkg/audit"
	"routedesk-hq/routedesk/pkg/config"
	"routedesk-hq/routedesk/pkg/provider"
	"routedesk-hq/routedesk/pkg/server"
	"routedesk-hq/routedesk/pkg/service"
	"routedesk-hq/routedesk/pkg/store"
	"routedesk-hq/routedesk/pkg/telemetry/health"
	"routedesk-hq/routedesk/pkg/telemetry/logging"
	"routedesk-hq/routedesk/pkg/telemetry/metrics"
	"routedesk-hq/routedesk/pkg/validate"
	"routedesk-hq/routedesk/pkg/worker"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the RouteDesk API server and worker",
	Long: `Start the RouteDesk API server with the specified configuration.

The server exposes the change-pipeline API on the configured address.
Unless disabled, the background worker runs alongside it and drains
the change-request queue against the configuration repository.

Examples:
  # Start with default config
  routedesk run

  # Start with custom config
  routedesk run --config /etc/routedesk/config.yaml

  # Override listen address
  routedesk run --listen 0.0.0.0:8090

  # Validate config without starting the server
  routedesk run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return err
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.Setup(cfg.Telemetry.Logging)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	printBanner(cfg)

	// Change-request store
	var st store.Store
	switch cfg.Store.Backend {
	case "sqlite":
		st, err = store.NewSQLiteStore(store.SQLiteConfig{
			DBPath:      cfg.Store.DBPath,
			BusyTimeout: cfg.Store.BusyTimeout,
		})
		if err != nil {
			return fmt.Errorf("failed to open change-request store: %w", err)
		}
	case "memory":
		st = store.NewMemoryStore()
		logger.Warn("using in-memory store; queued requests are lost on restart")
	default:
		return fmt.Errorf("unsupported store backend: %s", cfg.Store.Backend)
	}
	defer st.Close()
	fmt.Printf("✓ Store initialized (%s)\n", cfg.Store.Backend)

	// Audit log
	var auditLog audit.Log
	if cfg.Audit.Enabled {
		auditLog, err = audit.NewSQLiteLog(audit.SQLiteConfig{Path: cfg.Audit.DBPath})
		if err != nil {
			return fmt.Errorf("failed to open audit log: %w", err)
		}
	} else {
		auditLog = audit.NewNopLog()
	}
	defer auditLog.Close()

	// Validation rules and pipeline
	rules, err := validate.NewSource(cfg.Rules.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to load validation rules: %w", err)
	}
	if cfg.Rules.Watch && cfg.Rules.Path != "" {
		if err := rules.Watch(ctx); err != nil {
			logger.Warn("failed to watch rules file", "error", err)
		}
	}
	pipeline := validate.NewPipeline(rules, cfg.Rules.NginxBinary, logger)

	// Version-control provider
	if cfg.Provider.Repository == "" {
		return fmt.Errorf("provider.repository must be configured")
	}
	prov, err := provider.NewGitProvider(cfg.Provider, logger)
	if err != nil {
		return fmt.Errorf("failed to create git provider: %w", err)
	}
	if err := prov.Init(ctx); err != nil {
		// The worker's health gate retries; a cold start with the
		// remote down should not prevent the API from serving.
		logger.Warn("initial repository sync failed", "error", err)
	} else {
		fmt.Println("✓ Configuration repository synced")
	}

	// Metrics
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Telemetry.Metrics, nil)
	}

	// Health checks
	checker := health.New(0)
	checker.RegisterCheck("store", func(ctx context.Context) error {
		_, err := st.FindPending(ctx)
		return err
	})
	checker.RegisterCheck("provider", func(ctx context.Context) error {
		if !prov.CheckHealth(ctx) {
			return fmt.Errorf("configuration repository unreachable")
		}
		return nil
	})

	svc := service.New(st, prov, pipeline, auditLog, collector, logger)

	// Background worker
	w := worker.New(cfg.Worker, st, prov, pipeline, auditLog, collector, logger)
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start worker: %w", err)
	}
	defer w.Stop()
	if cfg.Worker.Enabled {
		fmt.Printf("✓ Worker started (poll interval %s)\n", cfg.Worker.PollInterval)
	}

	srv := server.New(cfg.Server, svc, checker, collector, logger)

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", cfg.Server.ListenAddress)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Start blocks until the context is cancelled or a shutdown
	// signal arrives, then drains in-flight requests.
	return srv.Start(ctx)
}

func printBanner(cfg *config.Config) {
	fmt.Printf("RouteDesk v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")
}
