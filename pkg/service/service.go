package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"routedesk-hq/routedesk/pkg/audit"
	"routedesk-hq/routedesk/pkg/provider"
	"routedesk-hq/routedesk/pkg/store"
	"routedesk-hq/routedesk/pkg/telemetry/metrics"
	"routedesk-hq/routedesk/pkg/validate"
)

// ErrInvalidArgument indicates a malformed team or environment name.
var ErrInvalidArgument = errors.New("invalid argument")

// nameRe constrains team and environment names: they become directory
// names inside the configuration repository and path segments in URLs.
var nameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Service is the front door of the change pipeline. It validates
// submitted fragments, queues accepted changes, and answers read
// queries. The background worker drains what Submit queues.
type Service struct {
	store    store.Store
	provider provider.Provider
	pipeline *validate.Pipeline
	audit    audit.Log
	metrics  *metrics.Collector
	logger   *slog.Logger
}

// New creates a service. The audit log and metrics collector may be
// nil when those concerns are disabled.
func New(
	st store.Store,
	prov provider.Provider,
	pipeline *validate.Pipeline,
	auditLog audit.Log,
	collector *metrics.Collector,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if auditLog == nil {
		auditLog = audit.NewNopLog()
	}
	return &Service{
		store:    st,
		provider: prov,
		pipeline: pipeline,
		audit:    auditLog,
		metrics:  collector,
		logger:   logger.With("component", "service"),
	}
}

func checkName(kind, name string) error {
	if !nameRe.MatchString(name) {
		return fmt.Errorf("%w: %s %q", ErrInvalidArgument, kind, name)
	}
	return nil
}

// Validate runs the three-stage pipeline over a team's fragments
// without queueing anything. The returned error is a
// *validate.ValidationError when the fragments are rejected.
func (s *Service) Validate(ctx context.Context, team, upstreams, locations string) (*validate.Result, error) {
	if err := checkName("team", team); err != nil {
		return nil, err
	}

	result, err := s.pipeline.ValidateSplit(team, upstreams, locations)
	if err != nil {
		if ve, ok := validate.AsValidationError(err); ok && s.metrics != nil {
			s.metrics.RecordValidationFailure(team, ve.Stage)
		}
		return nil, err
	}
	return result, nil
}

// Submit validates the fragments and, if they pass, queues a PENDING
// change request for the worker to pick up. Submission never touches
// the provider: acceptance into the queue is what the caller gets.
func (s *Service) Submit(ctx context.Context, team, environment, upstreams, locations string) (*store.ChangeRequest, error) {
	if err := checkName("team", team); err != nil {
		return nil, err
	}
	if err := checkName("environment", environment); err != nil {
		return nil, err
	}

	if _, err := s.Validate(ctx, team, upstreams, locations); err != nil {
		return nil, err
	}

	req, err := s.store.Create(ctx, &store.ChangeRequest{
		Team:            team,
		Environment:     environment,
		UpstreamsConfig: upstreams,
		LocationsConfig: locations,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to queue change request: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordSubmission(team, environment)
	}
	if err := s.audit.Record(ctx, &audit.Event{
		Action:      audit.ActionCreated,
		Team:        team,
		Environment: environment,
		RequestID:   req.ID,
	}); err != nil {
		s.logger.Warn("failed to record audit event", "request_id", req.ID, "error", err)
	}

	s.logger.Info("change request queued",
		"request_id", req.ID,
		"team", team,
		"environment", environment,
	)
	return req, nil
}

// Requests returns a team's change requests, newest first.
func (s *Service) Requests(ctx context.Context, team string) ([]*store.ChangeRequest, error) {
	if err := checkName("team", team); err != nil {
		return nil, err
	}
	return s.store.FindAllByTeam(ctx, team)
}

// Abandon withdraws a request that has not been submitted yet.
// Requests with an open pull request cannot be withdrawn here; the PR
// is closed in the hosting service instead.
func (s *Service) Abandon(ctx context.Context, id string) error {
	req, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.audit.Record(ctx, &audit.Event{
		Action:      audit.ActionAbandoned,
		Team:        req.Team,
		Environment: req.Environment,
		RequestID:   req.ID,
	}); err != nil {
		s.logger.Warn("failed to record audit event", "request_id", id, "error", err)
	}

	s.logger.Info("change request abandoned", "request_id", id, "team", req.Team)
	return nil
}

// CurrentConfig returns the committed fragments for a team in an
// environment, straight from the provider.
func (s *Service) CurrentConfig(ctx context.Context, team, environment string) (provider.ConfigPair, error) {
	if err := checkName("team", team); err != nil {
		return provider.ConfigPair{}, err
	}
	if err := checkName("environment", environment); err != nil {
		return provider.ConfigPair{}, err
	}
	return s.provider.GetConfigs(ctx, environment, team)
}

// History returns audit events matching the query, newest first.
func (s *Service) History(ctx context.Context, query audit.Query) ([]*audit.Event, error) {
	return s.audit.Events(ctx, query)
}
