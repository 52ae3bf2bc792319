// Package provider talks to the version-control system that holds the
// authoritative nginx configuration.
//
// The repository keeps one directory per environment and team under a
// configurable root, with two fragments each: upstream.conf (pool
// definitions) and proxy.conf (location routes). GitProvider mirrors
// the repository locally, reads committed fragments off the base
// branch, and publishes accepted changes by pushing review branches;
// the branch name doubles as the pull-request identifier. MockProvider
// backs tests for the worker and service layers.
package provider
