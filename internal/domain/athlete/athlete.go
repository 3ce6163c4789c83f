// Package athlete contains the competitors and officials of a tournament and
// the factory that generates them with randomized attributes.
package athlete

import (
	"fmt"

	"github.com/alem-hub/ozlympic/internal/domain/event"
	"github.com/alem-hub/ozlympic/pkg/random"
)

// Profile is an athlete's specialisation. It decides eligibility and the
// range of times the athlete produces.
type Profile string

const (
	ProfileSwimmer      Profile = "swimmer"
	ProfileSprinter     Profile = "sprinter"
	ProfileCyclist      Profile = "cyclist"
	ProfileSuperAthlete Profile = "super_athlete"
)

// Profiles returns every profile; the factory draws uniformly from it.
func Profiles() []Profile {
	return []Profile{ProfileSwimmer, ProfileSprinter, ProfileCyclist, ProfileSuperAthlete}
}

// specialty returns the single kind a specialist competes in.
func (p Profile) specialty() (event.Kind, bool) {
	switch p {
	case ProfileSwimmer:
		return event.KindSwimming, true
	case ProfileSprinter:
		return event.KindSprint, true
	case ProfileCyclist:
		return event.KindCycling, true
	default:
		return "", false
	}
}

// CanCompete reports whether the profile is eligible for kind.
func (p Profile) CanCompete(kind event.Kind) bool {
	if p == ProfileSuperAthlete {
		return kind.IsValid()
	}
	k, ok := p.specialty()
	return ok && k == kind
}

// DisplayName returns the name shown in the standings table.
func (p Profile) DisplayName() string {
	switch p {
	case ProfileSwimmer:
		return "Swimmer"
	case ProfileSprinter:
		return "Sprinter"
	case ProfileCyclist:
		return "Cyclist"
	case ProfileSuperAthlete:
		return "SuperAthlete"
	default:
		return "Unknown"
	}
}

// TimeRange is the inclusive range of seconds an athlete produces for a kind.
type TimeRange struct {
	Min int
	Max int
}

var timeRanges = map[event.Kind]TimeRange{
	event.KindSwimming: {Min: 100, Max: 200},
	event.KindSprint:   {Min: 10, Max: 20},
	event.KindCycling:  {Min: 500, Max: 800},
}

// RangeFor returns the time range of kind.
func RangeFor(kind event.Kind) TimeRange {
	return timeRanges[kind]
}

// ══════════════════════════════════════════════════════════════════════════════
// PERSON
// ══════════════════════════════════════════════════════════════════════════════

// Person holds the attributes shared by athletes and officials.
type Person struct {
	ID    int
	Name  string
	Age   int
	State string
}

// Label returns the short display form, e.g. "Cliff(7)".
func (p Person) Label() string {
	return fmt.Sprintf("%s(%d)", p.Name, p.ID)
}

// ══════════════════════════════════════════════════════════════════════════════
// ATHLETE
// ══════════════════════════════════════════════════════════════════════════════

// Athlete is a competitor. Its point total lives here and only here: every
// contest holds the same *Athlete, so points accumulate across contests.
type Athlete struct {
	Person
	Profile Profile

	points int
	src    random.Source
}

// NewAthlete creates an athlete that draws its times from src.
func NewAthlete(person Person, profile Profile, src random.Source) *Athlete {
	return &Athlete{Person: person, Profile: profile, src: src}
}

// CanCompete implements event.Competitor.
func (a *Athlete) CanCompete(kind event.Kind) bool {
	return a.Profile.CanCompete(kind)
}

// Perform implements event.Competitor. Times are whole seconds drawn
// uniformly from the kind's range.
func (a *Athlete) Perform(kind event.Kind) float64 {
	r := RangeFor(kind)
	return float64(random.Between(a.src, r.Min, r.Max))
}

// AwardPoints implements event.Competitor.
func (a *Athlete) AwardPoints(points int) {
	a.points += points
}

// Points implements event.Competitor.
func (a *Athlete) Points() int {
	return a.points
}

// String is used in logs.
func (a *Athlete) String() string {
	return fmt.Sprintf("[%s] %s age=%d state=%s points=%d",
		a.Profile.DisplayName(), a.Label(), a.Age, a.State, a.points)
}

// ══════════════════════════════════════════════════════════════════════════════
// OFFICIAL
// ══════════════════════════════════════════════════════════════════════════════

// Official referees contests. It implements event.Referee.
type Official struct {
	Person
}
