package query

import (
	"context"

	"github.com/alem-hub/ozlympic/internal/application/session"
	"github.com/alem-hub/ozlympic/internal/domain/event"
	"github.com/alem-hub/ozlympic/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET RESULTS QUERY
// Read model of every contest: line-up before it runs, result table after.
// ══════════════════════════════════════════════════════════════════════════════

// GetResultsQuery contains the query parameters.
type GetResultsQuery struct {
	// EventID restricts the result to one contest; empty returns all.
	EventID string
}

// ResultRowDTO is one line of a finished contest, in finishing order.
type ResultRowDTO struct {
	Rank    int
	Athlete string
	Time    float64
	Points  int
}

// EventResultDTO describes one contest.
type EventResultDTO struct {
	ID      string
	Kind    event.Kind
	Referee string
	Status  event.Status

	// Summary is the one-line form used in menus.
	Summary string

	// Athletes lists roster labels; after the contest they are in result order.
	Athletes []string

	// Rows is empty until the contest has finished.
	Rows []ResultRowDTO
}

// IsFinished reports whether the contest has been run.
func (d EventResultDTO) IsFinished() bool {
	return d.Status == event.StatusFinished
}

// GetResultsResult contains the contests in schedule order.
type GetResultsResult struct {
	Events   []EventResultDTO
	Finished int
}

// GetResultsHandler handles results queries over a tournament.
type GetResultsHandler struct {
	tournament *session.Tournament
}

// NewGetResultsHandler creates a new GetResultsHandler.
func NewGetResultsHandler(tournament *session.Tournament) *GetResultsHandler {
	return &GetResultsHandler{tournament: tournament}
}

// Handle executes the query.
func (h *GetResultsHandler) Handle(ctx context.Context, query GetResultsQuery) (*GetResultsResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	events := h.tournament.Events
	if query.EventID != "" {
		ev := h.tournament.EventByID(query.EventID)
		if ev == nil {
			return nil, shared.WrapError("query", "GetResults", shared.ErrNotFound,
				"event "+query.EventID+" not found", shared.ErrEventNotFound)
		}
		events = []*event.Event{ev}
	}

	result := &GetResultsResult{Events: make([]EventResultDTO, 0, len(events))}
	for _, ev := range events {
		dto := EventToDTO(ev)
		if dto.IsFinished() {
			result.Finished++
		}
		result.Events = append(result.Events, dto)
	}

	return result, nil
}

// EventToDTO converts a contest to its read model.
func EventToDTO(ev *event.Event) EventResultDTO {
	dto := EventResultDTO{
		ID:      ev.ID(),
		Kind:    ev.Kind(),
		Status:  ev.Status(),
		Summary: ev.String(),
	}
	if ev.Referee() != nil {
		dto.Referee = ev.Referee().Label()
	}

	for _, c := range ev.Roster() {
		dto.Athletes = append(dto.Athletes, c.Label())
	}

	for _, r := range ev.Results() {
		dto.Rows = append(dto.Rows, ResultRowDTO{
			Rank:    r.Rank,
			Athlete: r.Competitor.Label(),
			Time:    r.Time,
			Points:  r.Points,
		})
	}

	return dto
}
