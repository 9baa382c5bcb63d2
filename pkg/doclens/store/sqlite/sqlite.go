package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/doclens/pkg/doclens/internalerr"
	"github.com/cognicore/doclens/pkg/doclens/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite database with WAL mode enabled and initializes
// the schema.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, openErr(path, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, openErr(path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, openErr(path, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, openErr(path, err)
	}

	return &sqliteStore{db: db}, nil
}

func openErr(path string, err error) error {
	return fmt.Errorf("open sqlite %s: %v: %w", path, err, internalerr.ErrStoreUnavailable)
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	started_at TEXT NOT NULL,
	elapsed_ms INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_stages (
	run_id TEXT NOT NULL,
	name TEXT NOT NULL,
	status TEXT NOT NULL,
	reason TEXT,
	elapsed_ms INTEGER NOT NULL,
	PRIMARY KEY(run_id, name),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS reports (
	run_id TEXT PRIMARY KEY,
	generated_at TEXT NOT NULL,
	body TEXT NOT NULL,
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun inserts or replaces a run and its stage results.
func (s *sqliteStore) SaveRun(ctx context.Context, r store.RunRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, status, started_at, elapsed_ms) VALUES (?, ?, ?, ?)`,
		r.ID, r.Status, r.StartedAt.UTC().Format(time.RFC3339Nano), r.ElapsedMS)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_stages WHERE run_id = ?`, r.ID); err != nil {
		return err
	}
	for _, st := range r.Stages {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO run_stages (run_id, name, status, reason, elapsed_ms) VALUES (?, ?, ?, ?, ?)`,
			r.ID, st.Name, st.Status, st.Reason, st.ElapsedMS)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetRun returns a run and its stage results by ID.
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.RunRecord, bool, error) {
	var r store.RunRecord
	var startedAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, status, started_at, elapsed_ms FROM runs WHERE id = ?`, id).
		Scan(&r.ID, &r.Status, &startedAt, &r.ElapsedMS)
	if err == sql.ErrNoRows {
		return store.RunRecord{}, false, nil
	}
	if err != nil {
		return store.RunRecord{}, false, err
	}
	r.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, status, reason, elapsed_ms FROM run_stages WHERE run_id = ? ORDER BY name`, id)
	if err != nil {
		return store.RunRecord{}, false, err
	}
	defer rows.Close()

	for rows.Next() {
		var st store.StageRecord
		var reason sql.NullString
		if err := rows.Scan(&st.Name, &st.Status, &reason, &st.ElapsedMS); err != nil {
			return store.RunRecord{}, false, err
		}
		st.Reason = reason.String
		r.Stages = append(r.Stages, st)
	}
	if err := rows.Err(); err != nil {
		return store.RunRecord{}, false, err
	}

	return r, true, nil
}

// ListRuns returns runs, newest first.
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, started_at, elapsed_ms FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.RunRecord
	for rows.Next() {
		var r store.RunRecord
		var startedAt string
		if err := rows.Scan(&r.ID, &r.Status, &startedAt, &r.ElapsedMS); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveReport inserts or replaces a report, keyed by run ID.
func (s *sqliteStore) SaveReport(ctx context.Context, r store.ReportRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO reports (run_id, generated_at, body) VALUES (?, ?, ?)`,
		r.RunID, r.GeneratedAt.UTC().Format(time.RFC3339Nano), r.Body)
	return err
}

// GetReport returns a report by run ID.
func (s *sqliteStore) GetReport(ctx context.Context, runID string) (store.ReportRecord, bool, error) {
	var r store.ReportRecord
	var generatedAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, generated_at, body FROM reports WHERE run_id = ?`, runID).
		Scan(&r.RunID, &generatedAt, &r.Body)
	if err == sql.ErrNoRows {
		return store.ReportRecord{}, false, nil
	}
	if err != nil {
		return store.ReportRecord{}, false, err
	}
	r.GeneratedAt, _ = time.Parse(time.RFC3339Nano, generatedAt)

	return r, true, nil
}

// ListReports returns reports, newest first.
func (s *sqliteStore) ListReports(ctx context.Context, limit int) ([]store.ReportRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, generated_at, body FROM reports ORDER BY generated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.ReportRecord
	for rows.Next() {
		var r store.ReportRecord
		var generatedAt string
		if err := rows.Scan(&r.RunID, &generatedAt, &r.Body); err != nil {
			return nil, err
		}
		r.GeneratedAt, _ = time.Parse(time.RFC3339Nano, generatedAt)
		out = append(out, r)
	}
	return out, rows.Err()
}
