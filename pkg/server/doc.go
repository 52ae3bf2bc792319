// Package server exposes the change pipeline over HTTP: validation and
// submission endpoints for the portal, queue listing and withdrawal,
// committed-configuration reads, the audit trail, and the operational
// endpoints (/health, /ready, /metrics).
//
// All handlers sit behind a middleware chain of recovery, request-id
// assignment, structured request logging, CORS, and a per-request
// timeout.
package server
