package standings

import "context"

// Cache keeps the latest standings of a run for external display. It is
// rebuilt after every contest and never read back into a session.
type Cache interface {
	// Replace overwrites the run's standings with entries.
	Replace(ctx context.Context, runID string, entries []Entry) error

	// Top returns up to n entries ordered by rank. n <= 0 returns all.
	Top(ctx context.Context, runID string, n int) ([]Entry, error)
}
