package event

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/alem-hub/ozlympic/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONSTANTS
// ══════════════════════════════════════════════════════════════════════════════

const (
	// MinCompetitors is the smallest roster that can be resolved.
	MinCompetitors = 4

	// MaxCompetitors is the roster capacity.
	MaxCompetitors = 8
)

// pointsTable maps rank-1 to the points awarded for that rank.
var pointsTable = [...]int{5, 3, 1}

// PointsFor returns the points a competitor earns for rank. Every competitor
// sharing a rank receives the full value for that rank.
func PointsFor(rank int) int {
	if rank < 1 || rank > len(pointsTable) {
		return 0
	}
	return pointsTable[rank-1]
}

// MaxPointsPerContest is the sum of the point table.
func MaxPointsPerContest() int {
	total := 0
	for _, p := range pointsTable {
		total += p
	}
	return total
}

// ══════════════════════════════════════════════════════════════════════════════
// COLLABORATORS
// ══════════════════════════════════════════════════════════════════════════════

// Competitor is anything that can be entered into a contest.
// Competitors are compared by identity; implementations should be pointers.
type Competitor interface {
	Label() string
	CanCompete(kind Kind) bool
	Perform(kind Kind) float64
	AwardPoints(points int)
	Points() int
}

// Referee officiates a contest.
type Referee interface {
	Label() string
}

// Status is the lifecycle state of a contest.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusFinished   Status = "finished"
)

// Result is one competitor's outcome. Keeping time, rank and points in a single
// record means a reorder can never separate them.
type Result struct {
	Competitor Competitor
	Time       float64
	Rank       int
	Points     int
}

// IsWinner reports whether the result holds rank 1.
func (r Result) IsWinner() bool {
	return r.Rank == 1
}

// ══════════════════════════════════════════════════════════════════════════════
// EVENT
// ══════════════════════════════════════════════════════════════════════════════

// Event is one scheduled contest.
type Event struct {
	id      string
	kind    Kind
	roster  []Competitor
	referee Referee
	results []Result
	status  Status
}

// New creates a contest that has not started.
func New(id string, kind Kind) (*Event, error) {
	if id == "" {
		return nil, shared.ErrInvalidEventID
	}
	if !kind.IsValid() {
		return nil, shared.ErrInvalidKind
	}
	return &Event{
		id:     id,
		kind:   kind,
		roster: make([]Competitor, 0, MaxCompetitors),
		status: StatusNotStarted,
	}, nil
}

// FormatID builds the display id of a contest, e.g. "S01".
func FormatID(kind Kind, n int) string {
	return fmt.Sprintf("%c%02d", kind.Symbol(), n)
}

// AddCompetitors appends competitors to the roster. The append is all or
// nothing. Uniqueness is the caller's responsibility.
func (e *Event) AddCompetitors(competitors ...Competitor) error {
	if e.status == StatusFinished {
		return shared.ErrEventAlreadyClosed
	}
	for _, c := range competitors {
		if c == nil {
			return shared.ErrNilCompetitor
		}
	}
	if len(e.roster)+len(competitors) > MaxCompetitors {
		return shared.ErrRosterFull
	}
	e.roster = append(e.roster, competitors...)
	return nil
}

// SetReferee assigns the referee. It can only be done once.
func (e *Event) SetReferee(ref Referee) error {
	if ref == nil {
		return shared.ErrNilReferee
	}
	if e.referee != nil {
		return shared.ErrRefereeAssigned
	}
	e.referee = ref
	return nil
}

// Resolve runs the contest: every competitor performs, ranks are computed
// competition style (1224), points are awarded and the roster is stably
// reordered by ascending time. It either completes fully or fails before
// touching the roster, the results or any competitor's points.
func (e *Event) Resolve() ([]Result, error) {
	if e.status == StatusFinished {
		return nil, shared.ErrEventFinished
	}
	if e.referee == nil {
		return nil, shared.ErrNoReferee
	}
	if len(e.roster) < MinCompetitors {
		return nil, shared.ErrTooFewCompetitors
	}

	results := make([]Result, len(e.roster))
	for i, c := range e.roster {
		t := c.Perform(e.kind)
		if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
			return nil, shared.WrapError("event", "Resolve", shared.ErrInvalidInput,
				fmt.Sprintf("invalid time %v for %s", t, c.Label()), shared.ErrInvalidTime)
		}
		results[i] = Result{Competitor: c, Time: t, Rank: 1}
	}

	for i := range results {
		for j := range results {
			if results[i].Time > results[j].Time {
				results[i].Rank++
			}
		}
	}

	for i := range results {
		results[i].Points = PointsFor(results[i].Rank)
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		return cmp.Compare(a.Time, b.Time)
	})

	for i, r := range results {
		if r.Points > 0 {
			r.Competitor.AwardPoints(r.Points)
		}
		e.roster[i] = r.Competitor
	}
	e.results = results
	e.status = StatusFinished

	return e.Results(), nil
}

// IsWinner reports whether c took rank 1. It is false before resolution and
// for non-participants.
func (e *Event) IsWinner(c Competitor) bool {
	for _, r := range e.results {
		if r.Competitor == c && r.Rank == 1 {
			return true
		}
	}
	return false
}

// Winners returns every competitor with rank 1, in result order.
func (e *Event) Winners() []Competitor {
	var out []Competitor
	for _, r := range e.results {
		if r.IsWinner() {
			out = append(out, r.Competitor)
		}
	}
	return out
}

// ID returns the contest id.
func (e *Event) ID() string { return e.id }

// Kind returns the contest kind.
func (e *Event) Kind() Kind { return e.kind }

// Status returns the lifecycle state.
func (e *Event) Status() Status { return e.status }

// IsFinished reports whether the contest has been resolved.
func (e *Event) IsFinished() bool { return e.status == StatusFinished }

// Referee returns the referee, nil if none was assigned.
func (e *Event) Referee() Referee { return e.referee }

// Size returns the number of registered competitors.
func (e *Event) Size() int { return len(e.roster) }

// Roster returns a copy of the roster; after resolution it is in result order.
func (e *Event) Roster() []Competitor {
	out := make([]Competitor, len(e.roster))
	copy(out, e.roster)
	return out
}

// Results returns a copy of the results, nil before resolution.
func (e *Event) Results() []Result {
	if e.results == nil {
		return nil
	}
	out := make([]Result, len(e.results))
	copy(out, e.results)
	return out
}

// Contains reports whether c is on the roster.
func (e *Event) Contains(c Competitor) bool {
	return slices.Contains(e.roster, c)
}

// String returns the one-line summary shown in menus.
func (e *Event) String() string {
	s := fmt.Sprintf("%s: %s (%d athletes)", e.id, e.kind, len(e.roster))
	if e.IsFinished() {
		s += " (FINISHED)"
	}
	return s
}
