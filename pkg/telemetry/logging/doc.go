// Package logging builds the structured loggers the service runs on.
//
// # Overview
//
// The logging package configures Go's standard log/slog package from the
// telemetry section of the service configuration:
//   - JSON or text output
//   - Configurable minimum level (debug, info, warn, error)
//   - Optional file:line source annotation
//
// Components do not import this package after startup; they receive a
// *slog.Logger and derive their own with
// logger.With("component", "...").
//
// # Usage
//
//	// Build a logger without touching process-global state
//	logger, err := logging.New(cfg.Telemetry.Logging, os.Stdout)
//
//	// Or build one and install it as the slog default (startup path)
//	logger, err := logging.Setup(cfg.Telemetry.Logging)
//
//	logger.Info("request accepted",
//	    "team", "checkout",
//	    "environment", "staging",
//	)
package logging
