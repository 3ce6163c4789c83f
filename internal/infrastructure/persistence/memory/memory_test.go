package memory

import (
	"context"
	"testing"
	"time"

	"github.com/alem-hub/ozlympic/internal/domain/event"
	"github.com/alem-hub/ozlympic/internal/domain/standings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(run, id string, at time.Time, labels ...string) event.EventRecord {
	rows := make([]event.ResultRow, len(labels))
	for i, l := range labels {
		rows[i] = event.ResultRow{Position: i + 1, AthleteID: i + 1, Label: l, Time: float64(10 + i), Rank: i + 1, Points: event.PointsFor(i + 1)}
	}
	return event.EventRecord{RunID: run, EventID: id, Kind: event.KindSprint, Referee: "Ref(9)", FinishedAt: at, Rows: rows}
}

func TestResultArchive_SaveAndList(t *testing.T) {
	ctx := context.Background()
	a := NewResultArchive()
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, a.SaveEventResult(ctx, record("r1", "R02", base.Add(time.Minute), "b")))
	require.NoError(t, a.SaveEventResult(ctx, record("r1", "R01", base, "a")))
	require.NoError(t, a.SaveEventResult(ctx, record("r2", "S01", base, "c")))

	got, err := a.ListEventResults(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "R01", got[0].EventID)
	assert.Equal(t, "R02", got[1].EventID)

	// same id replaces
	require.NoError(t, a.SaveEventResult(ctx, record("r1", "R01", base, "a", "z")))
	got, err = a.ListEventResults(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Len(t, got[0].Rows, 2)

	none, err := a.ListEventResults(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestResultArchive_CopiesRows(t *testing.T) {
	ctx := context.Background()
	a := NewResultArchive()
	rec := record("r", "C01", time.Now(), "a", "b")
	require.NoError(t, a.SaveEventResult(ctx, rec))

	rec.Rows[0].Label = "mutated"
	got, err := a.ListEventResults(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, "a", got[0].Rows[0].Label)
	assert.Equal(t, []string{"a"}, got[0].Winners())
}

func TestResultArchive_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewResultArchive().SaveEventResult(ctx, record("r", "S01", time.Now())), context.Canceled)
}

func TestStandingsCache(t *testing.T) {
	ctx := context.Background()
	c := NewStandingsCache()

	entries := []standings.Entry{
		{Rank: 1, AthleteID: 3, Points: 8},
		{Rank: 2, AthleteID: 1, Points: 5},
		{Rank: 2, AthleteID: 2, Points: 5},
	}
	require.NoError(t, c.Replace(ctx, "r", entries))

	top, err := c.Top(ctx, "r", 2)
	require.NoError(t, err)
	assert.Equal(t, entries[:2], top)

	all, err := c.Top(ctx, "r", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, c.Replace(ctx, "r", entries[:1]))
	all, err = c.Top(ctx, "r", 10)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	empty, err := c.Top(ctx, "other", 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
