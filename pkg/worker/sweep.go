package worker

import (
	"context"
	"errors"
	"time"

	"routedesk-hq/routedesk/pkg/audit"
	"routedesk-hq/routedesk/pkg/provider"
	"routedesk-hq/routedesk/pkg/store"
)

// Sweep runs a single pass over the pending queue. It is exported so
// tests and the offline CLI can drive the worker without the scheduler.
func (w *Worker) Sweep(ctx context.Context) {
	start := time.Now()

	pending, err := w.store.FindPending(ctx)
	if err != nil {
		w.logger.Error("sweep failed to read queue", "error", err)
		return
	}

	if w.metrics != nil {
		w.metrics.SetPendingRequests(len(pending))
	}

	if len(pending) == 0 {
		if w.metrics != nil {
			w.metrics.RecordSweep("completed", time.Since(start))
		}
		return
	}

	// One health probe gates the whole sweep. An unreachable provider
	// leaves every record untouched so nothing burns retry attempts on
	// an outage.
	if !w.provider.CheckHealth(ctx) {
		w.logger.Warn("provider unhealthy, deferring queue", "pending", len(pending))
		if w.metrics != nil {
			w.metrics.RecordProviderError("health")
			w.metrics.RecordSweep("skipped_unhealthy", time.Since(start))
		}
		return
	}

	for _, req := range pending {
		w.processRecord(ctx, req)
	}

	if w.metrics != nil {
		w.metrics.RecordSweep("completed", time.Since(start))
	}
	w.logger.Info("sweep completed",
		"processed", len(pending),
		"duration", time.Since(start),
	)
}

// processRecord handles one queued request. Failures here never stop
// the sweep: each record succeeds or fails on its own.
func (w *Worker) processRecord(ctx context.Context, req *store.ChangeRequest) {
	timeout := w.cfg.RecordTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	recordCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger := w.logger.With(
		"request_id", req.ID,
		"team", req.Team,
		"environment", req.Environment,
	)

	// A panic on one record must not take down the sweep loop.
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while processing request", "panic", r)
		}
	}()

	// Rules may have changed since the request was queued; what was
	// acceptable then may not be now.
	if _, err := w.pipeline.ValidateSplit(req.Team, req.UpstreamsConfig, req.LocationsConfig); err != nil {
		logger.Warn("queued request no longer passes validation", "error", err)
		w.markFailed(recordCtx, req, "validation failed: "+err.Error())
		return
	}

	committed, err := w.provider.GetConfigs(recordCtx, req.Environment, req.Team)
	if err != nil {
		logger.Error("failed to read committed configuration", "error", err)
		if w.metrics != nil {
			w.metrics.RecordProviderError("get_configs")
		}
		w.retryOrFail(recordCtx, req, err)
		return
	}

	if committed.Upstreams == req.UpstreamsConfig && committed.Locations == req.LocationsConfig {
		logger.Info("request matches committed configuration, nothing to submit")
		w.markFailed(recordCtx, req, "no changes detected")
		return
	}

	prID, err := w.provider.CreatePR(recordCtx, req.Environment, req.Team,
		req.UpstreamsConfig, req.LocationsConfig)
	if err != nil {
		if errors.Is(err, provider.ErrNoChanges) {
			w.markFailed(recordCtx, req, "no changes detected")
			return
		}
		logger.Error("failed to create pull request", "error", err)
		if w.metrics != nil {
			w.metrics.RecordProviderError("create_pr")
		}
		w.retryOrFail(recordCtx, req, err)
		return
	}

	if err := w.store.UpdateStatus(recordCtx, req.ID, store.StatusSubmitted, prID); err != nil {
		logger.Error("failed to mark request submitted", "error", err)
		return
	}

	if w.metrics != nil {
		w.metrics.RecordProcessed("submitted")
	}
	if err := w.audit.Record(recordCtx, &audit.Event{
		Action:      audit.ActionSubmitted,
		Team:        req.Team,
		Environment: req.Environment,
		RequestID:   req.ID,
		Detail:      prID,
	}); err != nil {
		logger.Warn("failed to record audit event", "error", err)
	}
	logger.Info("pull request created", "pr_id", prID)
}

// markFailed moves a request to its terminal FAILED state.
func (w *Worker) markFailed(ctx context.Context, req *store.ChangeRequest, reason string) {
	if err := w.store.UpdateStatus(ctx, req.ID, store.StatusFailed, ""); err != nil {
		w.logger.Error("failed to mark request failed",
			"request_id", req.ID, "error", err)
		return
	}
	if w.metrics != nil {
		w.metrics.RecordProcessed("failed")
	}
	if err := w.audit.Record(ctx, &audit.Event{
		Action:      audit.ActionFailed,
		Team:        req.Team,
		Environment: req.Environment,
		RequestID:   req.ID,
		Detail:      reason,
	}); err != nil {
		w.logger.Warn("failed to record audit event",
			"request_id", req.ID, "error", err)
	}
}

// retryOrFail counts a provider failure against the request. The
// request stays PENDING for the next sweep until it runs out of
// attempts.
func (w *Worker) retryOrFail(ctx context.Context, req *store.ChangeRequest, cause error) {
	if err := w.store.IncrementAttempts(ctx, req.ID); err != nil {
		w.logger.Error("failed to count attempt",
			"request_id", req.ID, "error", err)
		return
	}

	maxAttempts := w.cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if req.Attempts+1 >= maxAttempts {
		w.markFailed(ctx, req, "max attempts exceeded: "+cause.Error())
		return
	}

	if w.metrics != nil {
		w.metrics.RecordProcessed("retried")
	}
	w.logger.Warn("request deferred to next sweep",
		"request_id", req.ID,
		"attempts", req.Attempts+1,
		"max_attempts", maxAttempts,
	)
}
