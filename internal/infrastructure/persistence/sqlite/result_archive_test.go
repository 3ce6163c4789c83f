package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alem-hub/ozlympic/internal/domain/event"
	"github.com/alem-hub/ozlympic/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openArchive(t *testing.T) (*ResultArchive, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.db")
	a, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })
	return a, path
}

func sample(run, id string, at time.Time) event.EventRecord {
	return event.EventRecord{
		RunID:      run,
		EventID:    id,
		Kind:       event.KindSwimming,
		Referee:    "Duke(26)",
		FinishedAt: at,
		Rows: []event.ResultRow{
			{Position: 1, AthleteID: 4, Label: "Abel(4)", Time: 101, Rank: 1, Points: 5},
			{Position: 2, AthleteID: 7, Label: "Cash(7)", Time: 101, Rank: 1, Points: 5},
			{Position: 3, AthleteID: 2, Label: "Eli(2)", Time: 150, Rank: 3, Points: 1},
			{Position: 4, AthleteID: 9, Label: "Jo(9)", Time: 199, Rank: 4, Points: 0},
		},
	}
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestResultArchive_RoundTrip(t *testing.T) {
	a, _ := openArchive(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	second := sample("run-1", "S02", base.Add(time.Minute))
	first := sample("run-1", "S01", base)
	require.NoError(t, a.SaveEventResult(ctx, second))
	require.NoError(t, a.SaveEventResult(ctx, first))
	require.NoError(t, a.SaveEventResult(ctx, sample("run-2", "S01", base)))

	got, err := a.ListEventResults(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first, got[0])
	assert.Equal(t, second, got[1])
	assert.Equal(t, []string{"Abel(4)", "Cash(7)"}, got[0].Winners())
}

func TestResultArchive_Replace(t *testing.T) {
	a, _ := openArchive(t)
	ctx := context.Background()
	rec := sample("run", "C01", time.Now().UTC().Truncate(time.Millisecond))
	require.NoError(t, a.SaveEventResult(ctx, rec))

	rec.Referee = "Hugo(30)"
	rec.Rows = rec.Rows[:2]
	require.NoError(t, a.SaveEventResult(ctx, rec))

	got, err := a.ListEventResults(ctx, "run")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Hugo(30)", got[0].Referee)
	assert.Len(t, got[0].Rows, 2)
}

func TestResultArchive_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	ctx := context.Background()

	a, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, a.SaveEventResult(ctx, sample("run", "R01", time.Now().UTC())))
	require.NoError(t, a.Close())

	b, err := Open(path)
	require.NoError(t, err)
	defer b.Close()

	got, err := b.ListEventResults(ctx, "run")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestResultArchive_RejectsMissingIDs(t *testing.T) {
	a, _ := openArchive(t)
	err := a.SaveEventResult(context.Background(), event.EventRecord{RunID: "run"})
	assert.True(t, retry.IsPermanent(err))
}

func TestResultArchive_EmptyRun(t *testing.T) {
	a, _ := openArchive(t)
	got, err := a.ListEventResults(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, got)
}
