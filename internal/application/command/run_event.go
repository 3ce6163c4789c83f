package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/alem-hub/ozlympic/internal/application/session"
	"github.com/alem-hub/ozlympic/internal/domain/athlete"
	"github.com/alem-hub/ozlympic/internal/domain/event"
	"github.com/alem-hub/ozlympic/internal/domain/shared"
	"github.com/alem-hub/ozlympic/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RUN EVENT COMMAND
// Resolves a contest, checks the operator's prediction and announces the
// outcome on the event bus.
// ══════════════════════════════════════════════════════════════════════════════

// RunEventCommand contains the contest to run.
type RunEventCommand struct {
	RunID shared.RunID
	Event *event.Event

	// Predicted is the operator's pick for the winner, nil for none.
	Predicted event.Competitor
}

// Validate validates the command.
func (c RunEventCommand) Validate() error {
	if c.Event == nil {
		return errors.New("run_event: event is required")
	}
	if !c.RunID.IsValid() {
		return fmt.Errorf("run_event: invalid run id %q", c.RunID)
	}
	return nil
}

// RunEventHandler handles the RunEventCommand.
type RunEventHandler struct {
	eventPublisher shared.EventPublisher
	log            *logger.Logger
}

// NewRunEventHandler creates a new RunEventHandler. A nil publisher skips
// the announcements.
func NewRunEventHandler(eventPublisher shared.EventPublisher, log *logger.Logger) *RunEventHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &RunEventHandler{
		eventPublisher: eventPublisher,
		log:            log.With(logger.Component("run_event")),
	}
}

// Run implements session.Runner.
func (h *RunEventHandler) Run(ctx context.Context, runID shared.RunID, ev *event.Event, predicted event.Competitor) (*session.Outcome, error) {
	return h.Handle(ctx, RunEventCommand{RunID: runID, Event: ev, Predicted: predicted})
}

// Handle executes the run event command. Domain errors from the contest are
// returned unchanged so the operator sees their message.
func (h *RunEventHandler) Handle(ctx context.Context, cmd RunEventCommand) (*session.Outcome, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ev := cmd.Event
	log := h.log.WithRunID(cmd.RunID.String()).With(logger.EventID(ev.ID()))

	results, err := ev.Resolve()
	if err != nil {
		log.Debug("event not resolved", logger.Err(err))
		return nil, err
	}

	outcome := &session.Outcome{
		Event:     ev,
		Results:   results,
		Winners:   ev.Winners(),
		Predicted: cmd.Predicted,
	}
	if cmd.Predicted != nil {
		outcome.Correct = ev.IsWinner(cmd.Predicted)
	}

	log.Info("event resolved",
		logger.EventKind(ev.Kind().String()),
		logger.Int("athletes", len(results)),
		logger.Int("winners", len(outcome.Winners)))

	outcome.PublishErr = h.publish(cmd.RunID, ev, outcome)
	if outcome.PublishErr != nil {
		log.Warn("event outcome not fully processed", logger.Err(outcome.PublishErr))
	}

	return outcome, nil
}

func (h *RunEventHandler) publish(runID shared.RunID, ev *event.Event, outcome *session.Outcome) error {
	if h.eventPublisher == nil {
		return nil
	}

	referee := ""
	if ev.Referee() != nil {
		referee = ev.Referee().Label()
	}

	var errs []error
	finished := shared.NewContestFinishedEvent(runID.String(), ev.ID(), ev.Kind().String(), referee, FinishedResults(outcome.Results))
	if err := h.eventPublisher.Publish(finished); err != nil {
		errs = append(errs, err)
	}

	if outcome.HasPrediction() {
		checked := shared.NewPredictionCheckedEvent(runID.String(), ev.ID(), outcome.Predicted.Label(), outcome.Correct)
		if err := h.eventPublisher.Publish(checked); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// FinishedResults detaches results from their competitors for publishing.
// Competitors that are not athletes get athlete id 0.
func FinishedResults(results []event.Result) []shared.FinishedResult {
	out := make([]shared.FinishedResult, len(results))
	for i, r := range results {
		out[i] = shared.FinishedResult{
			Position: i + 1,
			Label:    r.Competitor.Label(),
			Time:     r.Time,
			Rank:     r.Rank,
			Points:   r.Points,
		}
		if a, ok := r.Competitor.(*athlete.Athlete); ok {
			out[i].AthleteID = a.ID
		}
	}
	return out
}
