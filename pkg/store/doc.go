// Package store persists change requests and enforces their lifecycle
// at the storage layer: PENDING is the only mutable state, transitions
// go PENDING→SUBMITTED or PENDING→FAILED and nowhere else, and SUBMITTED
// records are immutable history that cannot be deleted.
//
// Two implementations are provided: SQLiteStore for deployments (WAL
// mode, single writer) and MemoryStore for tests and dev. Both are safe
// for concurrent use by the HTTP path and the background worker.
package store
