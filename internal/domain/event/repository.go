package event

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESULT ARCHIVE INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// ResultArchive records finished contests of a run for external display.
// Implementations live in the infrastructure layer (memory, SQLite, PostgreSQL).
// The session only writes to it; nothing is restored from it.
type ResultArchive interface {
	// SaveEventResult stores one finished contest. Saving the same
	// (RunID, EventID) twice replaces the earlier record.
	SaveEventResult(ctx context.Context, record EventRecord) error

	// ListEventResults returns the run's records ordered by finish time.
	ListEventResults(ctx context.Context, runID string) ([]EventRecord, error)
}

// EventRecord is the archived form of a finished contest.
type EventRecord struct {
	RunID      string
	EventID    string
	Kind       Kind
	Referee    string
	FinishedAt time.Time
	Rows       []ResultRow
}

// ResultRow is one archived result line, in finishing order.
type ResultRow struct {
	Position  int
	AthleteID int
	Label     string
	Time      float64
	Rank      int
	Points    int
}

// Winners returns the labels of rank-1 rows.
func (r EventRecord) Winners() []string {
	var out []string
	for _, row := range r.Rows {
		if row.Rank == 1 {
			out = append(out, row.Label)
		}
	}
	return out
}
