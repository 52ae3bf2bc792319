package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"routedesk-hq/routedesk/pkg/config"
)

// Collector registers and records all Prometheus metrics for the
// change pipeline. All recording methods are no-ops when metrics are
// disabled in configuration.
type Collector struct {
	config   config.MetricsConfig
	registry *prometheus.Registry

	submissionsTotal   *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	sweepsTotal        *prometheus.CounterVec
	sweepDuration      prometheus.Histogram
	recordsProcessed   *prometheus.CounterVec
	providerErrors     *prometheus.CounterVec
	pendingRequests    prometheus.Gauge
}

// NewCollector creates a collector with its own registry. If registry
// is nil a fresh one is created.
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "routedesk"
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		submissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "submissions_total",
				Help:      "Total number of change requests accepted into the queue",
			},
			[]string{"team", "environment"},
		),

		validationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "validation_failures_total",
				Help:      "Total number of rejected configuration fragments by stage",
			},
			[]string{"team", "stage"},
		),

		sweepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "sweeps_total",
				Help:      "Total number of worker sweeps by outcome",
			},
			[]string{"outcome"},
		),

		sweepDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "sweep_duration_seconds",
				Help:      "Duration of worker sweeps in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
			},
		),

		recordsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "records_processed_total",
				Help:      "Total number of queued records processed by outcome",
			},
			[]string{"outcome"},
		),

		providerErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "provider_errors_total",
				Help:      "Total number of version-control provider failures by operation",
			},
			[]string{"operation"},
		),

		pendingRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "pending_requests",
				Help:      "Number of change requests currently waiting in the queue",
			},
		),
	}

	registry.MustRegister(
		c.submissionsTotal,
		c.validationFailures,
		c.sweepsTotal,
		c.sweepDuration,
		c.recordsProcessed,
		c.providerErrors,
		c.pendingRequests,
	)

	return c
}

// RecordSubmission counts an accepted change request.
func (c *Collector) RecordSubmission(team, environment string) {
	if !c.config.Enabled {
		return
	}
	c.submissionsTotal.WithLabelValues(team, environment).Inc()
}

// RecordValidationFailure counts a rejected fragment. Stage is one of
// "syntax", "policy", "scope".
func (c *Collector) RecordValidationFailure(team, stage string) {
	if !c.config.Enabled {
		return
	}
	c.validationFailures.WithLabelValues(team, stage).Inc()
}

// RecordSweep counts a completed worker sweep and its duration.
// Outcome is "completed" or "skipped_unhealthy".
func (c *Collector) RecordSweep(outcome string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.sweepsTotal.WithLabelValues(outcome).Inc()
	c.sweepDuration.Observe(duration.Seconds())
}

// RecordProcessed counts one processed queue record. Outcome is
// "submitted", "failed", or "retried".
func (c *Collector) RecordProcessed(outcome string) {
	if !c.config.Enabled {
		return
	}
	c.recordsProcessed.WithLabelValues(outcome).Inc()
}

// RecordProviderError counts a provider failure. Operation is
// "health", "get_configs", or "create_pr".
func (c *Collector) RecordProviderError(operation string) {
	if !c.config.Enabled {
		return
	}
	c.providerErrors.WithLabelValues(operation).Inc()
}

// SetPendingRequests updates the queue depth gauge.
func (c *Collector) SetPendingRequests(count int) {
	if !c.config.Enabled {
		return
	}
	c.pendingRequests.Set(float64(count))
}

// Registry returns the Prometheus registry backing this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
