// Package metrics provides Prometheus metrics for the change pipeline.
//
// # Overview
//
// The metrics package implements a collector over a dedicated Prometheus
// registry covering both sides of the pipeline:
//
//   - Submission metrics: accepted submissions by team and environment,
//     validation failures by team and pipeline stage
//   - Worker metrics: sweeps by outcome, sweep duration, records
//     processed by outcome (submitted, failed, retried), pending queue
//     depth
//   - Provider metrics: errors by operation (health, get_configs,
//     create_pr)
//
// # Usage
//
//	// Create collector (nil registry creates a private one)
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//
//	// Record pipeline events
//	collector.RecordSubmission("checkout", "staging")
//	collector.RecordValidationFailure("checkout", "policy")
//	collector.RecordSweep("completed", elapsed)
//	collector.SetPendingRequests(3)
//
//	// Expose the registry
//	mux.Handle("GET /metrics", collector.Handler())
//
// All recording methods are no-ops when metrics are disabled in the
// configuration, so call sites need no enabled checks.
//
// # Prometheus Endpoint
//
// Metrics are exposed in standard Prometheus format under the
// configured namespace (default "routedesk"):
//
//	# HELP routedesk_submissions_total Total number of change requests accepted into the queue
//	# TYPE routedesk_submissions_total counter
//	routedesk_submissions_total{environment="staging",team="checkout"} 12
package metrics
