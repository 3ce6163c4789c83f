// Package sqlite records finished contests in a local SQLite file so a run
// can be inspected after the console exits.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/alem-hub/ozlympic/internal/domain/event"
	"github.com/alem-hub/ozlympic/pkg/retry"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const timeFormat = time.RFC3339Nano

const schema = `
CREATE TABLE IF NOT EXISTS event_results (
	run_id      TEXT NOT NULL,
	event_id    TEXT NOT NULL,
	kind        TEXT NOT NULL,
	referee     TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	PRIMARY KEY (run_id, event_id)
);

CREATE TABLE IF NOT EXISTS event_result_rows (
	run_id     TEXT    NOT NULL,
	event_id   TEXT    NOT NULL,
	position   INTEGER NOT NULL,
	athlete_id INTEGER NOT NULL,
	label      TEXT    NOT NULL,
	time       REAL    NOT NULL,
	rank       INTEGER NOT NULL,
	points     INTEGER NOT NULL,
	PRIMARY KEY (run_id, event_id, position),
	FOREIGN KEY (run_id, event_id) REFERENCES event_results (run_id, event_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_event_results_finished ON event_results (run_id, finished_at);
`

// ResultArchive implements event.ResultArchive on SQLite.
type ResultArchive struct {
	sqlDB *sql.DB
}

// Open opens (creating if needed) the archive at path.
func Open(path string) (*ResultArchive, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &ResultArchive{sqlDB: sqlDB}, nil
}

// Close closes the underlying database.
func (a *ResultArchive) Close() error {
	if a == nil || a.sqlDB == nil {
		return nil
	}
	return a.sqlDB.Close()
}

// SaveEventResult implements event.ResultArchive. The contest header and its
// rows are written in one transaction; an existing record is replaced.
func (a *ResultArchive) SaveEventResult(ctx context.Context, record event.EventRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if record.RunID == "" || record.EventID == "" {
		return retry.Permanent(fmt.Errorf("run id and event id are required"))
	}
	if record.FinishedAt.IsZero() {
		record.FinishedAt = time.Now().UTC()
	}

	tx, err := a.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return classify(fmt.Errorf("begin: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO event_results (run_id, event_id, kind, referee, finished_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (run_id, event_id) DO UPDATE SET
			kind = excluded.kind,
			referee = excluded.referee,
			finished_at = excluded.finished_at`,
		record.RunID, record.EventID, string(record.Kind), record.Referee,
		record.FinishedAt.UTC().Format(timeFormat))
	if err != nil {
		return classify(fmt.Errorf("upsert event result: %w", err))
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM event_result_rows WHERE run_id = ? AND event_id = ?`,
		record.RunID, record.EventID); err != nil {
		return classify(fmt.Errorf("clear result rows: %w", err))
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO event_result_rows (run_id, event_id, position, athlete_id, label, time, rank, points)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return classify(fmt.Errorf("prepare result rows: %w", err))
	}
	defer stmt.Close()

	for _, row := range record.Rows {
		if _, err := stmt.ExecContext(ctx, record.RunID, record.EventID,
			row.Position, row.AthleteID, row.Label, row.Time, row.Rank, row.Points); err != nil {
			return classify(fmt.Errorf("insert result row %d: %w", row.Position, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("commit: %w", err))
	}
	return nil
}

// ListEventResults implements event.ResultArchive.
func (a *ResultArchive) ListEventResults(ctx context.Context, runID string) ([]event.EventRecord, error) {
	rows, err := a.sqlDB.QueryContext(ctx, `
		SELECT event_id, kind, referee, finished_at
		FROM event_results
		WHERE run_id = ?
		ORDER BY finished_at, event_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query event results: %w", err)
	}
	defer rows.Close()

	var records []event.EventRecord
	index := make(map[string]int)
	for rows.Next() {
		var (
			rec        event.EventRecord
			kind       string
			finishedAt string
		)
		if err := rows.Scan(&rec.EventID, &kind, &rec.Referee, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan event result: %w", err)
		}
		rec.RunID = runID
		rec.Kind = event.Kind(kind)
		rec.FinishedAt, err = time.Parse(timeFormat, finishedAt)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at %q: %w", finishedAt, err)
		}
		index[rec.EventID] = len(records)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event results: %w", err)
	}

	resultRows, err := a.sqlDB.QueryContext(ctx, `
		SELECT event_id, position, athlete_id, label, time, rank, points
		FROM event_result_rows
		WHERE run_id = ?
		ORDER BY event_id, position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query result rows: %w", err)
	}
	defer resultRows.Close()

	for resultRows.Next() {
		var (
			eventID string
			row     event.ResultRow
		)
		if err := resultRows.Scan(&eventID, &row.Position, &row.AthleteID, &row.Label,
			&row.Time, &row.Rank, &row.Points); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		if i, ok := index[eventID]; ok {
			records[i].Rows = append(records[i].Rows, row)
		}
	}
	if err := resultRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate result rows: %w", err)
	}

	return records, nil
}

// classify marks lock contention as retryable.
func classify(err error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return retry.Retryable(err)
		}
	}
	return err
}

var _ event.ResultArchive = (*ResultArchive)(nil)
