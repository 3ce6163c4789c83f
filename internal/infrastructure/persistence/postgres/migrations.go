package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Migration is one forward-only schema step.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Migrations returns the embedded schema steps in version order.
func Migrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_event_results", SQL: createEventResults},
	}
}

// Migrator applies pending migrations and records them in schema_migrations.
type Migrator struct {
	conn       *Connection
	migrations []Migration
}

// NewMigrator creates a migrator over the embedded migrations.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{conn: conn, migrations: Migrations()}
}

// Migrate applies every migration not yet recorded, each in its own
// transaction.
func (m *Migrator) Migrate(ctx context.Context) error {
	err := m.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("postgres: create schema_migrations: %w", err)
	}

	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}

	for _, mig := range m.migrations {
		if applied[mig.Version] {
			continue
		}
		err := m.conn.WithTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.SQL); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`,
				mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("postgres: migration %d %s: %w", mig.Version, mig.Name, err)
		}
	}
	return nil
}

func (m *Migrator) applied(ctx context.Context) (map[int]bool, error) {
	rows, err := m.conn.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("postgres: read schema_migrations: %w", err)
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("postgres: scan schema_migrations: %w", err)
	}

	applied := make(map[int]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return applied, nil
}

const createEventResults = `
CREATE TABLE IF NOT EXISTS event_results (
    run_id UUID NOT NULL,
    event_id VARCHAR(8) NOT NULL,
    kind VARCHAR(16) NOT NULL,
    referee VARCHAR(100) NOT NULL,
    finished_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (run_id, event_id),
    CONSTRAINT valid_kind CHECK (kind IN ('swimming', 'sprint', 'cycling'))
);

CREATE INDEX IF NOT EXISTS idx_event_results_run_finished ON event_results(run_id, finished_at);

CREATE TABLE IF NOT EXISTS event_result_rows (
    run_id UUID NOT NULL,
    event_id VARCHAR(8) NOT NULL,
    position SMALLINT NOT NULL,
    athlete_id INTEGER NOT NULL,
    label VARCHAR(100) NOT NULL,
    time DOUBLE PRECISION NOT NULL,
    rank SMALLINT NOT NULL,
    points SMALLINT NOT NULL,

    PRIMARY KEY (run_id, event_id, position),
    FOREIGN KEY (run_id, event_id) REFERENCES event_results(run_id, event_id) ON DELETE CASCADE,
    CONSTRAINT valid_time CHECK (time >= 0),
    CONSTRAINT valid_rank CHECK (rank >= 1),
    CONSTRAINT valid_points CHECK (points >= 0)
);
`
