package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is an in-memory Provider for tests. Committed fragments
// are keyed by environment and team; CreatePR updates them so repeated
// submissions of the same content report ErrNoChanges.
type MockProvider struct {
	mu sync.Mutex

	// Healthy is returned by CheckHealth.
	Healthy bool

	// GetErr, when set, is returned by every GetConfigs call.
	GetErr error

	// CreateErr, when set, is returned by every CreatePR call.
	CreateErr error

	configs     map[string]ConfigPair
	createCalls int
	nextPR      int
}

// NewMockProvider returns a healthy mock with no committed fragments.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Healthy: true,
		configs: make(map[string]ConfigPair),
	}
}

func mockKey(environment, team string) string {
	return environment + "/" + team
}

// SetConfigs seeds the committed fragments for a team in an environment.
func (m *MockProvider) SetConfigs(environment, team string, pair ConfigPair) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[mockKey(environment, team)] = pair
}

// CheckHealth implements Provider.
func (m *MockProvider) CheckHealth(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Healthy
}

// GetConfigs implements Provider.
func (m *MockProvider) GetConfigs(ctx context.Context, environment, team string) (ConfigPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return ConfigPair{}, m.GetErr
	}
	return m.configs[mockKey(environment, team)], nil
}

// CreatePR implements Provider.
func (m *MockProvider) CreatePR(ctx context.Context, environment, team, upstreams, locations string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.createCalls++
	if m.CreateErr != nil {
		return "", m.CreateErr
	}

	current := m.configs[mockKey(environment, team)]
	if current.Upstreams == upstreams && current.Locations == locations {
		return "", ErrNoChanges
	}
	m.configs[mockKey(environment, team)] = ConfigPair{
		Upstreams: upstreams,
		Locations: locations,
	}

	m.nextPR++
	return fmt.Sprintf("mock-pr-%d", m.nextPR), nil
}

// CreateCalls returns how many times CreatePR was invoked.
func (m *MockProvider) CreateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCalls
}
