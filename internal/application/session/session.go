// Package session holds the state of one interactive tournament run: the
// generated tournament, the event the operator has selected and the pending
// winner prediction.
package session

import (
	"context"

	"github.com/alem-hub/ozlympic/internal/domain/athlete"
	"github.com/alem-hub/ozlympic/internal/domain/event"
	"github.com/alem-hub/ozlympic/internal/domain/shared"
	"github.com/alem-hub/ozlympic/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// TOURNAMENT
// ══════════════════════════════════════════════════════════════════════════════

// Tournament is the generated line-up of a run. Athletes holds only those
// drawn into at least one roster, in order of first appearance.
type Tournament struct {
	RunID    shared.RunID
	Events   []*event.Event
	Athletes []*athlete.Athlete
}

// EventByID returns the contest with the given id, nil if absent.
func (t *Tournament) EventByID(id string) *event.Event {
	for _, ev := range t.Events {
		if ev.ID() == id {
			return ev
		}
	}
	return nil
}

// Finished counts resolved contests.
func (t *Tournament) Finished() int {
	n := 0
	for _, ev := range t.Events {
		if ev.IsFinished() {
			n++
		}
	}
	return n
}

// ══════════════════════════════════════════════════════════════════════════════
// RUNNER
// ══════════════════════════════════════════════════════════════════════════════

// Outcome is what running a contest produced.
type Outcome struct {
	Event   *event.Event
	Results []event.Result
	Winners []event.Competitor

	// Predicted is the operator's pick, nil when no prediction was made.
	Predicted event.Competitor
	Correct   bool

	// PublishErr is set when a downstream reaction (archive, cache) failed.
	// The contest itself is resolved regardless.
	PublishErr error
}

// HasPrediction reports whether a prediction was checked.
func (o *Outcome) HasPrediction() bool {
	return o.Predicted != nil
}

// Runner resolves a contest on behalf of the session.
type Runner interface {
	Run(ctx context.Context, runID shared.RunID, ev *event.Event, predicted event.Competitor) (*Outcome, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION
// ══════════════════════════════════════════════════════════════════════════════

// Session is the operator's view of a tournament. It is driven from a single
// goroutine and is not safe for concurrent use.
type Session struct {
	tournament *Tournament
	runner     Runner
	log        *logger.Logger

	current    *event.Event
	prediction event.Competitor
}

// New creates a session over t. A nil logger disables logging.
func New(t *Tournament, runner Runner, log *logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	return &Session{
		tournament: t,
		runner:     runner,
		log:        log.WithRunID(t.RunID.String()).With(logger.Component("session")),
	}
}

// Tournament returns the tournament being played.
func (s *Session) Tournament() *Tournament {
	return s.tournament
}

// Current returns the selected contest, nil if none.
func (s *Session) Current() *event.Event {
	return s.current
}

// Prediction returns the pending prediction, nil if none.
func (s *Session) Prediction() event.Competitor {
	return s.prediction
}

// SelectEvent selects the contest at the 0-based index. Choosing a different
// contest drops the pending prediction.
func (s *Session) SelectEvent(index int) (*event.Event, error) {
	if index < 0 || index >= len(s.tournament.Events) {
		return nil, shared.ErrEventNotFound
	}

	ev := s.tournament.Events[index]
	if ev.IsFinished() {
		return nil, shared.ErrSelectedFinished
	}

	if ev != s.current {
		s.prediction = nil
	}
	s.current = ev
	s.log.Debug("event selected", logger.EventID(ev.ID()))

	return ev, nil
}

// Predict picks the winner of the selected contest by 1-based roster position.
func (s *Session) Predict(position int) (event.Competitor, error) {
	if err := s.checkSelected(); err != nil {
		return nil, err
	}

	roster := s.current.Roster()
	if position < 1 || position > len(roster) {
		return nil, shared.ErrInvalidOption
	}

	s.prediction = roster[position-1]
	s.log.Debug("winner predicted",
		logger.EventID(s.current.ID()),
		logger.String("athlete", s.prediction.Label()))

	return s.prediction, nil
}

// Start runs the selected contest and checks the pending prediction. The
// prediction is cleared once the contest has been resolved.
func (s *Session) Start(ctx context.Context) (*Outcome, error) {
	if err := s.checkSelected(); err != nil {
		return nil, err
	}

	outcome, err := s.runner.Run(ctx, s.tournament.RunID, s.current, s.prediction)
	if err != nil {
		return nil, err
	}
	s.prediction = nil

	return outcome, nil
}

func (s *Session) checkSelected() error {
	if s.current == nil {
		return shared.ErrNoEventSelected
	}
	if s.current.IsFinished() {
		return shared.ErrSelectedFinished
	}
	return nil
}
