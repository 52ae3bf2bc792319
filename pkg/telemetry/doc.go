// Package telemetry groups the observability concerns: structured
// logging (telemetry/logging), Prometheus metrics (telemetry/metrics),
// and liveness/readiness probes (telemetry/health).
package telemetry
