package audit

import (
	"context"
	"time"
)

// Action identifies what happened to a change request.
type Action string

const (
	// ActionCreated is recorded when a validated change request is queued.
	ActionCreated Action = "request.created"

	// ActionAbandoned is recorded when a queued request is withdrawn.
	ActionAbandoned Action = "request.abandoned"

	// ActionSubmitted is recorded when the worker opens a pull request
	// for a queued change.
	ActionSubmitted Action = "request.submitted"

	// ActionFailed is recorded when a queued change reaches a terminal
	// failure.
	ActionFailed Action = "request.failed"
)

// Event is a single append-only audit record. Events are never updated
// or deleted once written.
type Event struct {
	// ID uniquely identifies the event.
	ID string `json:"id"`

	// RecordedAt is when the event was written.
	RecordedAt time.Time `json:"recorded_at"`

	// Action is what happened.
	Action Action `json:"action"`

	// Team is the owning team of the affected change request.
	Team string `json:"team"`

	// Environment is the target environment, when applicable.
	Environment string `json:"environment,omitempty"`

	// RequestID is the ID of the affected change request.
	RequestID string `json:"request_id"`

	// Detail carries free-form context: the PR identifier for
	// submissions, the failure reason for terminal failures.
	Detail string `json:"detail,omitempty"`
}

// Query filters and paginates event reads. Zero values mean "no filter".
type Query struct {
	// Team restricts results to one team.
	Team string

	// RequestID restricts results to one change request.
	RequestID string

	// Action restricts results to one action type.
	Action Action

	// Limit caps the number of returned events. Default: 100.
	Limit int

	// Offset skips that many events for pagination.
	Offset int
}

// Log records and reads audit events. Writes are append-only.
type Log interface {
	// Record persists a single event. The implementation assigns ID
	// and RecordedAt if unset.
	Record(ctx context.Context, event *Event) error

	// Events returns events matching the query, newest first.
	Events(ctx context.Context, query Query) ([]*Event, error)

	// Close releases resources held by the log.
	Close() error
}
