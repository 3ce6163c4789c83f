// Package standings holds the tournament-wide points table: every athlete who
// took part in at least one contest, ranked by accumulated points.
package standings

import (
	"errors"
	"fmt"
	"slices"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Rank is a position in the standings, starting at 1.
type Rank int

// IsValid reports whether the rank is positive.
func (r Rank) IsValid() bool {
	return r > 0
}

// String returns "#<rank>".
func (r Rank) String() string {
	return fmt.Sprintf("#%d", r)
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTRY
// ══════════════════════════════════════════════════════════════════════════════

// Entry is one athlete's line in the standings.
type Entry struct {
	Rank      Rank
	AthleteID int
	Label     string
	Profile   string
	Age       int
	State     string
	Points    int
}

// NewEntry validates and creates an unranked entry.
func NewEntry(athleteID int, label, profile string, age int, state string, points int) (*Entry, error) {
	if athleteID <= 0 {
		return nil, ErrInvalidAthleteID
	}
	if points < 0 {
		return nil, ErrInvalidPoints
	}
	return &Entry{
		AthleteID: athleteID,
		Label:     label,
		Profile:   profile,
		Age:       age,
		State:     state,
		Points:    points,
	}, nil
}

// Clone returns a copy of the entry.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}

// String is used in logs.
func (e *Entry) String() string {
	return fmt.Sprintf("Entry{Rank: %d, Athlete: %s, Points: %d}", e.Rank, e.Label, e.Points)
}

// ══════════════════════════════════════════════════════════════════════════════
// RANKING
// ══════════════════════════════════════════════════════════════════════════════

// Ranking is the ordered standings table.
type Ranking struct {
	entries []*Entry
	byID    map[int]*Entry
}

// NewRanking creates an empty ranking.
func NewRanking() *Ranking {
	return &Ranking{
		entries: make([]*Entry, 0),
		byID:    make(map[int]*Entry),
	}
}

// Add appends an entry without sorting.
func (r *Ranking) Add(entry *Entry) error {
	if entry == nil {
		return ErrNilEntry
	}
	if _, exists := r.byID[entry.AthleteID]; exists {
		return ErrDuplicateAthlete
	}
	r.entries = append(r.entries, entry)
	r.byID[entry.AthleteID] = entry
	return nil
}

// SortByPoints orders entries by points descending, ties by athlete id, and
// assigns competition ranks: equal points share a rank and the next distinct
// total skips the shared places (1, 2, 2, 4).
func (r *Ranking) SortByPoints() {
	slices.SortFunc(r.entries, func(a, b *Entry) int {
		if a.Points != b.Points {
			return b.Points - a.Points
		}
		return a.AthleteID - b.AthleteID
	})

	for i, entry := range r.entries {
		if i > 0 && entry.Points == r.entries[i-1].Points {
			entry.Rank = r.entries[i-1].Rank
		} else {
			entry.Rank = Rank(i + 1)
		}
	}
}

// Leaders returns every entry holding rank 1.
func (r *Ranking) Leaders() []*Entry {
	var out []*Entry
	for _, e := range r.entries {
		if e.Rank == 1 {
			out = append(out, e)
		}
	}
	return out
}

// Top returns the first n entries.
func (r *Ranking) Top(n int) []*Entry {
	if n <= 0 {
		return nil
	}
	if n > len(r.entries) {
		n = len(r.entries)
	}
	result := make([]*Entry, n)
	copy(result, r.entries[:n])
	return result
}

// Count returns the number of entries.
func (r *Ranking) Count() int {
	return len(r.entries)
}

// All returns every entry in order.
func (r *Ranking) All() []*Entry {
	result := make([]*Entry, len(r.entries))
	copy(result, r.entries)
	return result
}

// TotalPoints returns the sum of all entries' points.
func (r *Ranking) TotalPoints() int {
	total := 0
	for _, e := range r.entries {
		total += e.Points
	}
	return total
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	ErrInvalidAthleteID = errors.New("invalid athlete id: must be positive")
	ErrInvalidPoints    = errors.New("invalid points: must be non-negative")
	ErrNilEntry         = errors.New("cannot add nil entry")
	ErrDuplicateAthlete = errors.New("athlete already exists in ranking")
)
