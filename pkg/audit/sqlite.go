package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/google/uuid"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_events (
    id          TEXT PRIMARY KEY,
    recorded_at INTEGER NOT NULL,
    action      TEXT NOT NULL,
    team        TEXT NOT NULL,
    environment TEXT NOT NULL,
    request_id  TEXT NOT NULL,
    detail      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_events_team ON audit_events(team);
CREATE INDEX IF NOT EXISTS idx_audit_events_request ON audit_events(request_id);
CREATE INDEX IF NOT EXISTS idx_audit_events_recorded ON audit_events(recorded_at);
`

// SQLiteConfig contains configuration for the SQLite audit log.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// SQLiteLog implements Log on a dedicated SQLite database. The audit
// database is separate from the change-request store so that history
// survives queue cleanup.
type SQLiteLog struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteLog opens (creating if needed) the audit database and
// prepares its schema.
func NewSQLiteLog(config SQLiteConfig) (*SQLiteLog, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("audit database path is required")
	}
	if config.BusyTimeout <= 0 {
		config.BusyTimeout = 5 * time.Second
	}

	logger := slog.Default().With("component", "audit.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", config.BusyTimeout.Milliseconds())); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create audit schema: %w", err)
	}

	logger.Info("audit log initialized", "path", config.Path)

	return &SQLiteLog{db: db, logger: logger}, nil
}

// Record implements Log.
func (l *SQLiteLog) Record(ctx context.Context, event *Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.RecordedAt.IsZero() {
		event.RecordedAt = time.Now().UTC()
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO audit_events (id, recorded_at, action, team, environment, request_id, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.RecordedAt.UnixMilli(),
		string(event.Action),
		event.Team,
		event.Environment,
		event.RequestID,
		event.Detail,
	)
	if err != nil {
		return fmt.Errorf("failed to record audit event: %w", err)
	}
	return nil
}

// Events implements Log.
func (l *SQLiteLog) Events(ctx context.Context, query Query) ([]*Event, error) {
	sqlQuery := "SELECT id, recorded_at, action, team, environment, request_id, detail FROM audit_events"

	var clauses []string
	var args []any
	if query.Team != "" {
		clauses = append(clauses, "team = ?")
		args = append(args, query.Team)
	}
	if query.RequestID != "" {
		clauses = append(clauses, "request_id = ?")
		args = append(args, query.RequestID)
	}
	if query.Action != "" {
		clauses = append(clauses, "action = ?")
		args = append(args, string(query.Action))
	}
	for i, clause := range clauses {
		if i == 0 {
			sqlQuery += " WHERE " + clause
		} else {
			sqlQuery += " AND " + clause
		}
	}

	sqlQuery += " ORDER BY recorded_at DESC, id DESC"

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := l.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		var event Event
		var recordedAt int64
		var action string
		if err := rows.Scan(&event.ID, &recordedAt, &action, &event.Team,
			&event.Environment, &event.RequestID, &event.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		event.RecordedAt = time.UnixMilli(recordedAt).UTC()
		event.Action = Action(action)
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit events: %w", err)
	}

	return events, nil
}

// Close implements Log.
func (l *SQLiteLog) Close() error {
	return l.db.Close()
}
