// Package memory provides in-process implementations of the results archive
// and the standings cache. They are the defaults when no external store is
// configured and back most application tests.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/alem-hub/ozlympic/internal/domain/event"
)

// ResultArchive keeps finished contests in memory, grouped by run.
type ResultArchive struct {
	mu   sync.RWMutex
	runs map[string][]event.EventRecord
}

// NewResultArchive creates an empty archive.
func NewResultArchive() *ResultArchive {
	return &ResultArchive{runs: make(map[string][]event.EventRecord)}
}

// SaveEventResult implements event.ResultArchive.
func (a *ResultArchive) SaveEventResult(ctx context.Context, record event.EventRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	record.Rows = slices.Clone(record.Rows)

	a.mu.Lock()
	defer a.mu.Unlock()

	records := a.runs[record.RunID]
	for i := range records {
		if records[i].EventID == record.EventID {
			records[i] = record
			return nil
		}
	}
	a.runs[record.RunID] = append(records, record)
	return nil
}

// ListEventResults implements event.ResultArchive.
func (a *ResultArchive) ListEventResults(ctx context.Context, runID string) ([]event.EventRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	records := a.runs[runID]
	out := make([]event.EventRecord, len(records))
	for i, r := range records {
		r.Rows = slices.Clone(r.Rows)
		out[i] = r
	}
	slices.SortStableFunc(out, func(x, y event.EventRecord) int {
		return x.FinishedAt.Compare(y.FinishedAt)
	})
	return out, nil
}
