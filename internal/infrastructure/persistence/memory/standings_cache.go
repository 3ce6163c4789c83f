package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/alem-hub/ozlympic/internal/domain/standings"
)

// StandingsCache keeps the latest standings per run.
type StandingsCache struct {
	mu   sync.RWMutex
	runs map[string][]standings.Entry
}

// NewStandingsCache creates an empty cache.
func NewStandingsCache() *StandingsCache {
	return &StandingsCache{runs: make(map[string][]standings.Entry)}
}

// Replace implements standings.Cache.
func (c *StandingsCache) Replace(ctx context.Context, runID string, entries []standings.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs[runID] = slices.Clone(entries)
	return nil
}

// Top implements standings.Cache.
func (c *StandingsCache) Top(ctx context.Context, runID string, n int) ([]standings.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := c.runs[runID]
	if n <= 0 || n > len(entries) {
		n = len(entries)
	}
	return slices.Clone(entries[:n]), nil
}
