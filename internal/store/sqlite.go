// Package store persists simulation output: the JSON event log, the
// derived chat transcript, and a SQLite archive of completed runs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/venkat299/healthsim/internal/models"
)

// archiveSchema holds run metadata plus the full event log per run.
const archiveSchema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    start_date TEXT NOT NULL,
    horizon_days REAL NOT NULL,
    seed INTEGER NOT NULL,
    member_name TEXT NOT NULL,
    event_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    day REAL NOT NULL,
    timestamp TEXT NOT NULL,
    type TEXT NOT NULL,
    source TEXT NOT NULL,
    payload TEXT NOT NULL,
    PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_events_type ON events(run_id, type);
`

// RunMeta describes one archived run.
type RunMeta struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	StartDate  string    `json:"start_date"`
	Horizon    float64   `json:"horizon_days"`
	Seed       int64     `json:"seed"`
	MemberName string    `json:"member_name"`
	EventCount int       `json:"event_count"`
}

// Archive is a SQLite-backed store of completed runs.
type Archive struct {
	db *sql.DB
}

// OpenArchive opens (creating if needed) the archive database at path.
func OpenArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(archiveSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// SaveRun archives a completed run and returns its generated ID.
func (a *Archive) SaveRun(ctx context.Context, meta RunMeta, events []models.Event) (string, error) {
	id := meta.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := meta.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning archive transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, start_date, horizon_days, seed, member_name, event_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, createdAt.Format(time.RFC3339), meta.StartDate, meta.Horizon, meta.Seed, meta.MemberName, len(events))
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO events (run_id, seq, day, timestamp, type, source, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing event insert: %w", err)
	}
	defer stmt.Close()

	for i, ev := range events {
		payload, err := json.Marshal(ev.Payload)
		if err != nil {
			return "", fmt.Errorf("marshaling payload for event %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, id, i, ev.Day, ev.Timestamp, string(ev.Type), ev.Source, string(payload)); err != nil {
			return "", fmt.Errorf("inserting event %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing archive transaction: %w", err)
	}
	return id, nil
}

// ListRuns returns archived run metadata, newest first.
func (a *Archive) ListRuns(ctx context.Context) ([]RunMeta, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, created_at, start_date, horizon_days, seed, member_name, event_count
		 FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []RunMeta
	for rows.Next() {
		var meta RunMeta
		var createdAt string
		if err := rows.Scan(&meta.ID, &createdAt, &meta.StartDate, &meta.Horizon, &meta.Seed, &meta.MemberName, &meta.EventCount); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			meta.CreatedAt = t
		}
		out = append(out, meta)
	}
	return out, rows.Err()
}

// Events returns the full event log of an archived run in log order.
func (a *Archive) Events(ctx context.Context, runID string) ([]models.Event, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT day, timestamp, type, source, payload
		 FROM events WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var out []models.Event
	for rows.Next() {
		var ev models.Event
		var typ, payload string
		if err := rows.Scan(&ev.Day, &ev.Timestamp, &typ, &ev.Source, &payload); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		ev.Type = models.EventType(typ)
		if err := json.Unmarshal([]byte(payload), &ev.Payload); err != nil {
			return nil, fmt.Errorf("unmarshaling payload: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
