package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"routedesk-hq/routedesk/pkg/audit"
	"routedesk-hq/routedesk/pkg/config"
	"routedesk-hq/routedesk/pkg/provider"
	"routedesk-hq/routedesk/pkg/store"
	"routedesk-hq/routedesk/pkg/telemetry/metrics"
	"routedesk-hq/routedesk/pkg/validate"
)

// Worker drains the change-request queue on a fixed cadence. Each
// sweep re-validates pending records, diffs them against the committed
// configuration, and pushes review branches through the provider.
//
// Sweeps never overlap: if one is still running when the next tick
// fires, the tick is skipped.
type Worker struct {
	cfg      config.WorkerConfig
	store    store.Store
	provider provider.Provider
	pipeline *validate.Pipeline
	audit    audit.Log
	metrics  *metrics.Collector
	cron     *cron.Cron
	logger   *slog.Logger
	mu       sync.Mutex
	running  bool
}

// New creates a worker. The audit log and metrics collector may be nil
// when those concerns are disabled.
func New(
	cfg config.WorkerConfig,
	st store.Store,
	prov provider.Provider,
	pipeline *validate.Pipeline,
	auditLog audit.Log,
	collector *metrics.Collector,
	logger *slog.Logger,
) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	if auditLog == nil {
		auditLog = audit.NewNopLog()
	}
	return &Worker{
		cfg:      cfg,
		store:    st,
		provider: prov,
		pipeline: pipeline,
		audit:    auditLog,
		metrics:  collector,
		logger:   logger.With("component", "worker"),
	}
}

// Start schedules recurring sweeps. It returns immediately; sweeps run
// on the cron goroutine until Stop is called or ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.cfg.Enabled {
		w.logger.Info("worker disabled, queued changes will not be processed")
		return nil
	}
	if w.running {
		return fmt.Errorf("worker already started")
	}

	w.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))

	schedule := fmt.Sprintf("@every %s", w.cfg.PollInterval)
	_, err := w.cron.AddFunc(schedule, func() {
		w.Sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sweeps: %w", err)
	}

	w.cron.Start()
	w.running = true

	w.logger.Info("worker started",
		"poll_interval", w.cfg.PollInterval,
		"max_attempts", w.cfg.MaxAttempts,
	)

	go func() {
		<-ctx.Done()
		w.Stop()
	}()

	return nil
}

// Stop halts scheduling and waits for a running sweep to finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cron != nil && w.running {
		stopCtx := w.cron.Stop()
		<-stopCtx.Done()
		w.running = false
		w.logger.Info("worker stopped")
	}
}

// IsRunning reports whether sweeps are scheduled.
func (w *Worker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
