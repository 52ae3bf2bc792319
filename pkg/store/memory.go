package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store with an in-memory map. It is used in
// tests and for dev deployments where persistence across restarts is not
// needed.
type MemoryStore struct {
	mu       sync.RWMutex
	requests map[string]*ChangeRequest
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		requests: make(map[string]*ChangeRequest),
	}
}

// Create implements Store.
func (s *MemoryStore) Create(ctx context.Context, req *ChangeRequest) (*ChangeRequest, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)

	stored := &ChangeRequest{
		ID:              uuid.New().String(),
		Team:            req.Team,
		Environment:     req.Environment,
		UpstreamsConfig: req.UpstreamsConfig,
		LocationsConfig: req.LocationsConfig,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	s.mu.Lock()
	s.requests[stored.ID] = stored
	s.mu.Unlock()

	return copyRequest(stored), nil
}

// FindAllByTeam implements Store.
func (s *MemoryStore) FindAllByTeam(ctx context.Context, team string) ([]*ChangeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var requests []*ChangeRequest
	for _, req := range s.requests {
		if req.Team == team {
			requests = append(requests, copyRequest(req))
		}
	}

	// Newest first; id as tiebreaker for stable ordering.
	sort.Slice(requests, func(i, j int) bool {
		if !requests[i].CreatedAt.Equal(requests[j].CreatedAt) {
			return requests[i].CreatedAt.After(requests[j].CreatedAt)
		}
		return requests[i].ID > requests[j].ID
	})
	return requests, nil
}

// FindPending implements Store.
func (s *MemoryStore) FindPending(ctx context.Context) ([]*ChangeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var requests []*ChangeRequest
	for _, req := range s.requests {
		if req.Status == StatusPending {
			requests = append(requests, copyRequest(req))
		}
	}

	sort.Slice(requests, func(i, j int) bool {
		if !requests[i].CreatedAt.Equal(requests[j].CreatedAt) {
			return requests[i].CreatedAt.Before(requests[j].CreatedAt)
		}
		return requests[i].ID < requests[j].ID
	})
	return requests, nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (*ChangeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRequest(req), nil
}

// UpdateStatus implements Store.
func (s *MemoryStore) UpdateStatus(ctx context.Context, id string, status Status, prID string) error {
	if !status.Terminal() {
		return ErrInvalidTransition
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return ErrNotFound
	}
	if req.Status != StatusPending {
		return ErrInvalidTransition
	}

	req.Status = status
	if status == StatusSubmitted {
		req.PRID = prID
	}
	req.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	return nil
}

// IncrementAttempts implements Store.
func (s *MemoryStore) IncrementAttempts(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return ErrNotFound
	}
	req.Attempts++
	req.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return ErrNotFound
	}
	if req.Status == StatusSubmitted {
		return ErrNotAbandonable
	}

	delete(s.requests, id)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}

func copyRequest(req *ChangeRequest) *ChangeRequest {
	clone := *req
	return &clone
}
