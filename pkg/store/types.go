package store

import (
	"context"
	"errors"
	"time"
)

// Status is the lifecycle state of a change request.
type Status string

const (
	// StatusPending means the request is queued for the background
	// worker.
	StatusPending Status = "PENDING"

	// StatusSubmitted means a pull request was opened for the change.
	// Terminal: submitted requests are immutable history.
	StatusSubmitted Status = "SUBMITTED"

	// StatusFailed means processing gave up on the request. Terminal
	// unless the record is deleted and resubmitted.
	StatusFailed Status = "FAILED"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusSubmitted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusSubmitted || s == StatusFailed
}

// ChangeRequest is one team's queued proposal to update its configuration
// fragments in one environment. The config fields are immutable snapshots
// of validated text; a new submission is a new record.
type ChangeRequest struct {
	ID              string    `json:"id"`
	Team            string    `json:"team"`
	Environment     string    `json:"environment"`
	UpstreamsConfig string    `json:"upstreams_config"`
	LocationsConfig string    `json:"locations_config"`
	Status          Status    `json:"status"`
	PRID            string    `json:"pr_id,omitempty"`
	Attempts        int       `json:"attempts"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

var (
	// ErrNotFound is returned when no change request has the given id.
	ErrNotFound = errors.New("change request not found")

	// ErrInvalidTransition is returned for a status update that is not
	// PENDING→SUBMITTED or PENDING→FAILED.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotAbandonable is returned when deleting a SUBMITTED request;
	// submitted requests are immutable history.
	ErrNotAbandonable = errors.New("submitted change requests cannot be deleted")
)

// Store persists change requests. Implementations must be safe for
// concurrent use: the HTTP path inserts and deletes while the worker
// reads and updates.
type Store interface {
	// Create inserts a new request. The caller fills Team, Environment,
	// UpstreamsConfig, and LocationsConfig; the store assigns ID,
	// Status (PENDING), and timestamps, and returns the stored record.
	Create(ctx context.Context, req *ChangeRequest) (*ChangeRequest, error)

	// FindAllByTeam returns a team's requests, newest first.
	FindAllByTeam(ctx context.Context, team string) ([]*ChangeRequest, error)

	// FindPending returns all PENDING requests in creation order.
	FindPending(ctx context.Context) ([]*ChangeRequest, error)

	// Get returns the request with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*ChangeRequest, error)

	// UpdateStatus transitions a PENDING request to SUBMITTED or FAILED,
	// refreshing UpdatedAt. prID is stored only for SUBMITTED.
	UpdateStatus(ctx context.Context, id string, status Status, prID string) error

	// IncrementAttempts bumps the retry counter without changing status.
	IncrementAttempts(ctx context.Context, id string) error

	// Delete removes a PENDING or FAILED request. Deleting a SUBMITTED
	// request returns ErrNotAbandonable.
	Delete(ctx context.Context, id string) error

	// Close releases resources held by the store.
	Close() error
}
