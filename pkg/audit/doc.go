// Package audit keeps an append-only history of change-request
// lifecycle events in a dedicated SQLite database.
//
// The audit log is separate from the change-request queue: abandoning
// or cleaning up a request removes it from the queue but its history
// remains queryable here. Events are written by the service layer and
// the reconciliation worker and are never modified after the fact.
package audit
