package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/alem-hub/ozlympic/internal/domain/event"
	"github.com/alem-hub/ozlympic/pkg/retry"
	"github.com/jackc/pgx/v5"
)

// ResultArchive implements event.ResultArchive on PostgreSQL.
type ResultArchive struct {
	conn *Connection
}

// NewResultArchive creates an archive on conn. Run the Migrator first.
func NewResultArchive(conn *Connection) *ResultArchive {
	return &ResultArchive{conn: conn}
}

// SaveEventResult implements event.ResultArchive. Transient failures are
// marked retry.Retryable and constraint violations retry.Permanent.
func (a *ResultArchive) SaveEventResult(ctx context.Context, record event.EventRecord) error {
	if record.RunID == "" || record.EventID == "" {
		return retry.Permanent(fmt.Errorf("run id and event id are required"))
	}
	if record.FinishedAt.IsZero() {
		record.FinishedAt = time.Now().UTC()
	}

	err := a.conn.WithTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		batch.Queue(`
			INSERT INTO event_results (run_id, event_id, kind, referee, finished_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (run_id, event_id) DO UPDATE SET
				kind = EXCLUDED.kind,
				referee = EXCLUDED.referee,
				finished_at = EXCLUDED.finished_at`,
			record.RunID, record.EventID, string(record.Kind), record.Referee, record.FinishedAt)
		batch.Queue(`DELETE FROM event_result_rows WHERE run_id = $1 AND event_id = $2`,
			record.RunID, record.EventID)
		for _, row := range record.Rows {
			batch.Queue(`
				INSERT INTO event_result_rows (run_id, event_id, position, athlete_id, label, time, rank, points)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				record.RunID, record.EventID, row.Position, row.AthleteID, row.Label, row.Time, row.Rank, row.Points)
		}

		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		err = fmt.Errorf("postgres: save %s/%s: %w", record.RunID, record.EventID, err)
		switch {
		case IsTransient(err):
			return retry.Retryable(err)
		case IsConstraintViolation(err):
			return retry.Permanent(err)
		}
		return err
	}
	return nil
}

// ListEventResults implements event.ResultArchive.
func (a *ResultArchive) ListEventResults(ctx context.Context, runID string) ([]event.EventRecord, error) {
	rows, err := a.conn.Query(ctx, `
		SELECT r.event_id, r.kind, r.referee, r.finished_at,
		       w.position, w.athlete_id, w.label, w.time, w.rank, w.points
		FROM event_results r
		LEFT JOIN event_result_rows w ON w.run_id = r.run_id AND w.event_id = r.event_id
		WHERE r.run_id = $1
		ORDER BY r.finished_at, r.event_id, w.position`, runID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list results: %w", err)
	}
	defer rows.Close()

	var records []event.EventRecord
	for rows.Next() {
		var (
			eventID, kind, referee string
			finishedAt             time.Time
			position, athleteID    *int
			label                  *string
			t                      *float64
			rank, points           *int
		)
		if err := rows.Scan(&eventID, &kind, &referee, &finishedAt,
			&position, &athleteID, &label, &t, &rank, &points); err != nil {
			return nil, fmt.Errorf("postgres: scan result: %w", err)
		}

		if n := len(records); n == 0 || records[n-1].EventID != eventID {
			records = append(records, event.EventRecord{
				RunID:      runID,
				EventID:    eventID,
				Kind:       event.Kind(kind),
				Referee:    referee,
				FinishedAt: finishedAt.UTC(),
			})
		}
		if position == nil {
			continue
		}
		last := &records[len(records)-1]
		last.Rows = append(last.Rows, event.ResultRow{
			Position:  *position,
			AthleteID: *athleteID,
			Label:     *label,
			Time:      *t,
			Rank:      *rank,
			Points:    *points,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate results: %w", err)
	}

	return records, nil
}

var _ event.ResultArchive = (*ResultArchive)(nil)
