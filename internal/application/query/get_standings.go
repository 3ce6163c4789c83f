// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
package query

import (
	"context"
	"errors"

	"github.com/alem-hub/ozlympic/internal/application/session"
	"github.com/alem-hub/ozlympic/internal/domain/shared"
	"github.com/alem-hub/ozlympic/internal/domain/standings"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STANDINGS QUERY
// Ranks the tournament's athletes by accumulated points.
// ══════════════════════════════════════════════════════════════════════════════

// GetStandingsQuery contains the query parameters.
type GetStandingsQuery struct {
	// Limit caps the number of entries; 0 returns everyone.
	Limit int
}

// Validate checks the query parameters.
func (q GetStandingsQuery) Validate() error {
	if q.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	return nil
}

// GetStandingsResult contains the standings.
type GetStandingsResult struct {
	// Entries in rank order: points descending, ties by athlete id.
	Entries []standings.Entry

	// Leaders are the labels of every athlete holding rank 1.
	Leaders []string

	// TotalCount is the number of ranked athletes before Limit.
	TotalCount int

	TotalPoints int
}

// GetStandingsHandler handles standings queries over a tournament.
type GetStandingsHandler struct {
	tournament *session.Tournament
}

// NewGetStandingsHandler creates a new GetStandingsHandler.
func NewGetStandingsHandler(tournament *session.Tournament) *GetStandingsHandler {
	return &GetStandingsHandler{tournament: tournament}
}

// Handle executes the query.
func (h *GetStandingsHandler) Handle(ctx context.Context, query GetStandingsQuery) (*GetStandingsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetStandings", shared.ErrValidation, err.Error(), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ranking := standings.NewRanking()
	for _, a := range h.tournament.Athletes {
		entry, err := standings.NewEntry(a.ID, a.Label(), a.Profile.DisplayName(), a.Age, a.State, a.Points())
		if err != nil {
			return nil, shared.WrapError("query", "GetStandings", shared.ErrInvalidState,
				"cannot rank "+a.Label(), err)
		}
		if err := ranking.Add(entry); err != nil {
			return nil, shared.WrapError("query", "GetStandings", shared.ErrInvalidState,
				"cannot rank "+a.Label(), err)
		}
	}
	ranking.SortByPoints()

	result := &GetStandingsResult{
		TotalCount:  ranking.Count(),
		TotalPoints: ranking.TotalPoints(),
	}
	for _, e := range ranking.Leaders() {
		result.Leaders = append(result.Leaders, e.Label)
	}

	top := ranking.All()
	if query.Limit > 0 {
		top = ranking.Top(query.Limit)
	}
	result.Entries = make([]standings.Entry, len(top))
	for i, e := range top {
		result.Entries[i] = *e
	}

	return result, nil
}
