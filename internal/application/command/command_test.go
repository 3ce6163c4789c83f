package command

import (
	"context"
	"errors"
	"testing"

	"github.com/alem-hub/ozlympic/internal/domain/athlete"
	"github.com/alem-hub/ozlympic/internal/domain/event"
	"github.com/alem-hub/ozlympic/internal/domain/shared"
	"github.com/alem-hub/ozlympic/pkg/random"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects published events and optionally fails.
type recorder struct {
	events []shared.Event
	err    error
}

func (r *recorder) Publish(e shared.Event) error {
	r.events = append(r.events, e)
	return r.err
}

const testRunID shared.RunID = "2f1c0e0a-8d5b-4a57-9a3e-6c1f1f3f2b10"

func TestSetupTournamentCommand_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     SetupTournamentCommand
		wantErr bool
	}{
		{"valid", SetupTournamentCommand{Athletes: 25, Events: 5}, false},
		{"no athletes", SetupTournamentCommand{Athletes: 0, Events: 5}, true},
		{"no events", SetupTournamentCommand{Athletes: 25, Events: 0}, true},
		{"too many events", SetupTournamentCommand{Athletes: 25, Events: 100}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetupTournament(t *testing.T) {
	pub := &recorder{}
	h := NewSetupTournamentHandler(random.New(42), pub, nil, SetupTournamentConfig{})

	tour, err := h.Handle(context.Background(), SetupTournamentCommand{Athletes: 25, Events: 5})
	require.NoError(t, err)

	assert.True(t, tour.RunID.IsValid())
	require.Len(t, tour.Events, 5)

	inRoster := map[*athlete.Athlete]bool{}
	for i, ev := range tour.Events {
		assert.Equal(t, event.FormatID(ev.Kind(), i+1), ev.ID(), "contests are numbered in order")
		assert.GreaterOrEqual(t, ev.Size(), event.MinCompetitors)
		assert.LessOrEqual(t, ev.Size(), event.MaxCompetitors)
		assert.NotNil(t, ev.Referee())
		assert.Equal(t, event.StatusNotStarted, ev.Status())
		for _, c := range ev.Roster() {
			a, ok := c.(*athlete.Athlete)
			require.True(t, ok)
			inRoster[a] = true
		}
	}

	// retained athletes are exactly the drawn ones, each once
	assert.Len(t, tour.Athletes, len(inRoster))
	for _, a := range tour.Athletes {
		assert.True(t, inRoster[a])
	}

	// retained in order of first appearance
	first := tour.Events[0].Roster()
	for i, c := range first {
		assert.Same(t, c, tour.Athletes[i])
	}

	require.Len(t, pub.events, 1)
	ready, ok := pub.events[0].(shared.TournamentReadyEvent)
	require.True(t, ok)
	assert.Equal(t, tour.RunID.String(), ready.RunID)
	assert.Len(t, ready.Contests, 5)
	assert.Equal(t, len(tour.Athletes), ready.Athletes)
}

func TestSetupTournament_DistinctRunIDs(t *testing.T) {
	h := NewSetupTournamentHandler(random.New(1), nil, nil, SetupTournamentConfig{})
	a, err := h.Handle(context.Background(), SetupTournamentCommand{Athletes: 25, Events: 2})
	require.NoError(t, err)
	b, err := h.Handle(context.Background(), SetupTournamentCommand{Athletes: 25, Events: 2})
	require.NoError(t, err)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestSetupTournament_PoolTooSmall(t *testing.T) {
	h := NewSetupTournamentHandler(random.New(3), nil, nil, SetupTournamentConfig{Attempts: 2})

	// three athletes can never fill a roster of four
	_, err := h.Handle(context.Background(), SetupTournamentCommand{Athletes: 3, Events: 1})
	assert.ErrorIs(t, err, shared.ErrInsufficientPool)
	assert.Contains(t, err.Error(), "2 attempts")
}

func TestSetupTournament_PublishFailureIsNotFatal(t *testing.T) {
	pub := &recorder{err: errors.New("bus closed")}
	h := NewSetupTournamentHandler(random.New(5), pub, nil, SetupTournamentConfig{})

	tour, err := h.Handle(context.Background(), SetupTournamentCommand{Athletes: 30, Events: 3})
	require.NoError(t, err)
	assert.Len(t, tour.Events, 3)
}

func TestSetupTournament_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := NewSetupTournamentHandler(random.New(5), nil, nil, SetupTournamentConfig{})
	_, err := h.Handle(ctx, SetupTournamentCommand{Athletes: 25, Events: 5})
	assert.ErrorIs(t, err, context.Canceled)
}

// contest builds a sprint with fixed times from a scripted source.
func contest(t *testing.T, times ...int) (*event.Event, []*athlete.Athlete) {
	t.Helper()
	ev, err := event.New("R01", event.KindSprint)
	require.NoError(t, err)

	var out []*athlete.Athlete
	for i, tm := range times {
		// Between(10, 20) returns 10 + Intn(11)
		a := athlete.NewAthlete(athlete.Person{ID: i + 1, Name: "A"}, athlete.ProfileSprinter, fixed(tm-10))
		out = append(out, a)
		require.NoError(t, ev.AddCompetitors(a))
	}
	require.NoError(t, ev.SetReferee(&athlete.Official{Person: athlete.Person{ID: 99, Name: "Ref"}}))
	return ev, out
}

type fixed int

func (f fixed) Intn(int) int { return int(f) }

func TestRunEvent(t *testing.T) {
	ev, athletes := contest(t, 12, 10, 10, 15)
	pub := &recorder{}
	h := NewRunEventHandler(pub, nil)

	out, err := h.Handle(context.Background(), RunEventCommand{RunID: testRunID, Event: ev, Predicted: athletes[2]})
	require.NoError(t, err)

	assert.True(t, ev.IsFinished())
	assert.True(t, out.Correct)
	assert.NoError(t, out.PublishErr)
	assert.Equal(t, []event.Competitor{athletes[1], athletes[2]}, out.Winners)
	assert.Equal(t, []int{5, 5, 0, 0}, []int{athletes[1].Points(), athletes[2].Points(), athletes[0].Points(), athletes[3].Points()})

	require.Len(t, pub.events, 2)
	finished, ok := pub.events[0].(shared.ContestFinishedEvent)
	require.True(t, ok)
	assert.Equal(t, "R01", finished.ContestID)
	assert.Equal(t, "sprint", finished.Kind)
	assert.Equal(t, "Ref(99)", finished.Referee)
	assert.Equal(t, testRunID.String(), finished.RunID)
	assert.Equal(t, []shared.FinishedResult{
		{Position: 1, AthleteID: 2, Label: "A(2)", Time: 10, Rank: 1, Points: 5},
		{Position: 2, AthleteID: 3, Label: "A(3)", Time: 10, Rank: 1, Points: 5},
		{Position: 3, AthleteID: 1, Label: "A(1)", Time: 12, Rank: 3, Points: 1},
		{Position: 4, AthleteID: 4, Label: "A(4)", Time: 15, Rank: 4, Points: 0},
	}, finished.Results)

	checked, ok := pub.events[1].(shared.PredictionCheckedEvent)
	require.True(t, ok)
	assert.True(t, checked.Correct)
	assert.Equal(t, "A(3)", checked.Predicted)
}

func TestRunEvent_WrongPrediction(t *testing.T) {
	ev, athletes := contest(t, 12, 10, 11, 15)
	out, err := NewRunEventHandler(nil, nil).Handle(context.Background(),
		RunEventCommand{RunID: testRunID, Event: ev, Predicted: athletes[3]})
	require.NoError(t, err)
	assert.False(t, out.Correct)
	assert.True(t, out.HasPrediction())
}

func TestRunEvent_NoPredictionPublishesOnlyFinished(t *testing.T) {
	ev, _ := contest(t, 12, 10, 11, 15)
	pub := &recorder{}
	_, err := NewRunEventHandler(pub, nil).Run(context.Background(), testRunID, ev, nil)
	require.NoError(t, err)
	require.Len(t, pub.events, 1)
	assert.Equal(t, shared.EventContestFinished, pub.events[0].EventType())
}

func TestRunEvent_PublishErrorDoesNotUndoResolution(t *testing.T) {
	ev, _ := contest(t, 12, 10, 11, 15)
	boom := errors.New("archive down")
	out, err := NewRunEventHandler(&recorder{err: boom}, nil).Run(context.Background(), testRunID, ev, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, out.PublishErr, boom)
	assert.True(t, ev.IsFinished())
}

func TestRunEvent_DomainErrorsPassThrough(t *testing.T) {
	ev, err := event.New("S01", event.KindSwimming)
	require.NoError(t, err)
	pub := &recorder{}

	_, err = NewRunEventHandler(pub, nil).Run(context.Background(), testRunID, ev, nil)
	assert.ErrorIs(t, err, shared.ErrNoReferee)
	assert.Equal(t, "no referee in the event", shared.UserMessage(err))
	assert.Empty(t, pub.events)
}

func TestRunEvent_Validate(t *testing.T) {
	h := NewRunEventHandler(nil, nil)
	_, err := h.Handle(context.Background(), RunEventCommand{RunID: testRunID})
	assert.Error(t, err)

	ev, _ := contest(t, 12, 10, 11, 15)
	_, err = h.Handle(context.Background(), RunEventCommand{RunID: "nope", Event: ev})
	assert.Error(t, err)
	assert.False(t, ev.IsFinished())
}
