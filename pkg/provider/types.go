package provider

import (
	"context"
	"errors"
	"path"
)

var (
	// ErrNoChanges indicates the proposed fragments are identical to
	// what the repository already holds, so no review branch was made.
	ErrNoChanges = errors.New("no changes against committed configuration")

	// ErrBranchNotFound indicates the configured base branch does not
	// exist in the repository.
	ErrBranchNotFound = errors.New("base branch not found")

	// ErrNotInitialized indicates the provider has not cloned the
	// repository yet.
	ErrNotInitialized = errors.New("provider not initialized")
)

// ConfigPair holds the two configuration fragments kept per team and
// environment: the upstream pool definitions and the location routes.
type ConfigPair struct {
	// Upstreams is the content of upstream.conf. Empty if the file does
	// not exist yet.
	Upstreams string

	// Locations is the content of proxy.conf. Empty if the file does
	// not exist yet.
	Locations string
}

// Provider is the version-control backend holding the authoritative
// proxy configuration.
type Provider interface {
	// CheckHealth reports whether the remote repository is reachable.
	// It never returns an error: an unreachable remote is simply
	// unhealthy.
	CheckHealth(ctx context.Context) bool

	// GetConfigs returns the committed fragments for a team in an
	// environment. Missing fragments come back as empty strings, not
	// errors.
	GetConfigs(ctx context.Context, environment, team string) (ConfigPair, error)

	// CreatePR pushes the proposed fragments on a review branch and
	// returns an identifier for the opened change. Returns ErrNoChanges
	// if the fragments match what is already committed.
	CreatePR(ctx context.Context, environment, team, upstreams, locations string) (string, error)
}

// fragmentDir returns the repository-relative directory holding a
// team's fragments for an environment.
func fragmentDir(configRoot, environment, team string) string {
	return path.Join(configRoot, environment, team)
}

// upstreamPath returns the repository-relative path of upstream.conf.
func upstreamPath(configRoot, environment, team string) string {
	return path.Join(fragmentDir(configRoot, environment, team), "upstream.conf")
}

// locationsPath returns the repository-relative path of proxy.conf.
func locationsPath(configRoot, environment, team string) string {
	return path.Join(fragmentDir(configRoot, environment, team), "proxy.conf")
}
