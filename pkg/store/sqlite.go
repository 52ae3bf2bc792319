package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore implements Store using SQLite. It is suitable for the
// single-instance deployment this service targets: WAL mode for
// concurrent readers, a single writer connection, and prepared statements
// for the hot paths.
type SQLiteStore struct {
	db *sql.DB

	createStmt    *sql.Stmt
	byTeamStmt    *sql.Stmt
	pendingStmt   *sql.Stmt
	getStmt       *sql.Stmt
	updateStmt    *sql.Stmt
	attemptsStmt  *sql.Stmt
	deleteStmt    *sql.Stmt
}

// SQLiteConfig configures the SQLite store.
type SQLiteConfig struct {
	// DBPath is the path to the database file.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// NewSQLiteStore opens (creating if needed) the change-request database.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{db: db}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS change_requests (
		id TEXT PRIMARY KEY,
		team TEXT NOT NULL,
		environment TEXT NOT NULL,
		upstreams_config TEXT NOT NULL,
		locations_config TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		pr_id TEXT NOT NULL DEFAULT '',
		attempts INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_change_requests_team ON change_requests(team);
	CREATE INDEX IF NOT EXISTS idx_change_requests_status ON change_requests(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.createStmt, err = s.db.Prepare(`
		INSERT INTO change_requests
			(id, team, environment, upstreams_config, locations_config, status, pr_id, attempts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, '', 0, ?, ?)`)
	if err != nil {
		return err
	}

	const selectCols = `SELECT id, team, environment, upstreams_config, locations_config,
		status, pr_id, attempts, created_at, updated_at FROM change_requests`

	s.byTeamStmt, err = s.db.Prepare(selectCols + ` WHERE team = ? ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return err
	}

	s.pendingStmt, err = s.db.Prepare(selectCols + ` WHERE status = 'PENDING' ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return err
	}

	s.getStmt, err = s.db.Prepare(selectCols + ` WHERE id = ?`)
	if err != nil {
		return err
	}

	s.updateStmt, err = s.db.Prepare(`
		UPDATE change_requests SET status = ?, pr_id = ?, updated_at = ?
		WHERE id = ? AND status = 'PENDING'`)
	if err != nil {
		return err
	}

	s.attemptsStmt, err = s.db.Prepare(`
		UPDATE change_requests SET attempts = attempts + 1, updated_at = ? WHERE id = ?`)
	if err != nil {
		return err
	}

	s.deleteStmt, err = s.db.Prepare(`
		DELETE FROM change_requests WHERE id = ? AND status != 'SUBMITTED'`)
	if err != nil {
		return err
	}

	return nil
}

// Create implements Store.
func (s *SQLiteStore) Create(ctx context.Context, req *ChangeRequest) (*ChangeRequest, error) {
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

	_, err := s.createStmt.ExecContext(ctx,
		stored.ID, stored.Team, stored.Environment,
		stored.UpstreamsConfig, stored.LocationsConfig,
		string(stored.Status),
		now.UnixMilli(), now.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert change request: %w", err)
	}

	return stored, nil
}

// FindAllByTeam implements Store.
func (s *SQLiteStore) FindAllByTeam(ctx context.Context, team string) ([]*ChangeRequest, error) {
	rows, err := s.byTeamStmt.QueryContext(ctx, team)
	if err != nil {
		return nil, fmt.Errorf("failed to query change requests: %w", err)
	}
	defer rows.Close()
	return scanRequests(rows)
}

// FindPending implements Store.
func (s *SQLiteStore) FindPending(ctx context.Context) ([]*ChangeRequest, error) {
	rows, err := s.pendingStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending change requests: %w", err)
	}
	defer rows.Close()
	return scanRequests(rows)
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*ChangeRequest, error) {
	req, err := scanRequest(s.getStmt.QueryRowContext(ctx, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get change request: %w", err)
	}
	return req, nil
}

// UpdateStatus implements Store. The WHERE clause restricts the update to
// PENDING rows, enforcing the transition rules at the storage layer.
func (s *SQLiteStore) UpdateStatus(ctx context.Context, id string, status Status, prID string) error {
	if !status.Terminal() {
		return fmt.Errorf("%w: cannot transition to %s", ErrInvalidTransition, status)
	}
	if status != StatusSubmitted {
		prID = ""
	}

	res, err := s.updateStmt.ExecContext(ctx, string(status), prID, time.Now().UTC().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("failed to update change request: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Either the row is gone or it already left PENDING.
		if _, getErr := s.Get(ctx, id); getErr != nil {
			return getErr
		}
		return ErrInvalidTransition
	}
	return nil
}

// IncrementAttempts implements Store.
func (s *SQLiteStore) IncrementAttempts(ctx context.Context, id string) error {
	res, err := s.attemptsStmt.ExecContext(ctx, time.Now().UTC().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("failed to increment attempts: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.deleteStmt.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete change request: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		req, getErr := s.Get(ctx, id)
		if getErr != nil {
			return getErr
		}
		if req.Status == StatusSubmitted {
			return ErrNotAbandonable
		}
		return ErrNotFound
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	for _, stmt := range []*sql.Stmt{
		s.createStmt, s.byTeamStmt, s.pendingStmt, s.getStmt,
		s.updateStmt, s.attemptsStmt, s.deleteStmt,
	} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*ChangeRequest, error) {
	var req ChangeRequest
	var status string
	var createdAt, updatedAt int64

	err := row.Scan(&req.ID, &req.Team, &req.Environment,
		&req.UpstreamsConfig, &req.LocationsConfig,
		&status, &req.PRID, &req.Attempts, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	req.Status = Status(status)
	req.CreatedAt = time.UnixMilli(createdAt).UTC()
	req.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &req, nil
}

func scanRequests(rows *sql.Rows) ([]*ChangeRequest, error) {
	var requests []*ChangeRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan change request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}
