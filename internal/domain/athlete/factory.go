package athlete

import (
	"github.com/alem-hub/ozlympic/internal/domain/shared"
	"github.com/alem-hub/ozlympic/pkg/random"
)

var names = []string{
	"Abel", "Adam", "Alger", "Algernon", "Antonio", "Archer",
	"August", "Baird", "Beck", "Ben", "Bernard", "Bernie", "Bert",
	"Bob", "Burgess", "Burton", "Cash", "Clement", "Cleveland",
	"Cliff", "Colbert", "Colin", "Corey", "Cornelius", "Craig",
	"Cyril", "Dana", "Dempsey", "Derrick", "Dominic", "Donald",
	"Duke", "Dunn", "Dwight", "Earl", "Edward", "Eli", "Ellis",
	"Eugene", "Evan", "Francis", "Frank", "Frederic", "Gavin",
	"George", "Gustave", "Hardy", "Harry", "Hugo", "Hunter", "Jim",
	"Jo", "Julian", "Keith", "Levi", "Lyle", "Lynn", "Magee",
	"Malcolm", "Marlon", "Matt", "Meredith", "Miles", "Morgan",
	"Mortimer", "Murphy", "Neil", "Oliver", "Perry", "Philip",
	"Quentin", "Reg", "Reginald", "Rod", "Rodney", "Rudolf", "Sandy",
	"Saxon", "Sebastian", "Solomon", "Spencer", "Terence", "Thomas",
	"Tim", "Tobias", "Tyler", "Uriah", "Victor", "Webster",
	"Winfred", "Zachary",
}

var states = []string{"NSW", "QLD", "SA", "TAS", "VIC", "WA"}

// Age bounds, inclusive.
const (
	AthleteMinAge  = 18
	AthleteMaxAge  = 50
	OfficialMinAge = 15
	OfficialMaxAge = 35
)

// Factory generates athletes and officials. Athletes and officials share one
// id sequence, so every person in a tournament has a distinct id.
type Factory struct {
	src random.Source
	seq *shared.Sequence
}

// NewFactory creates a factory drawing from src and numbering from seq.
func NewFactory(src random.Source, seq *shared.Sequence) *Factory {
	if seq == nil {
		seq = shared.NewSequence(1)
	}
	return &Factory{src: src, seq: seq}
}

// NewAthlete creates an athlete with a uniformly drawn profile.
func (f *Factory) NewAthlete() *Athlete {
	return f.NewAthleteWithProfile(random.Pick(f.src, Profiles()))
}

// NewAthleteWithProfile creates an athlete of the given profile.
func (f *Factory) NewAthleteWithProfile(profile Profile) *Athlete {
	return NewAthlete(f.person(AthleteMinAge, AthleteMaxAge), profile, f.src)
}

// NewOfficial creates a referee.
func (f *Factory) NewOfficial() *Official {
	return &Official{Person: f.person(OfficialMinAge, OfficialMaxAge)}
}

func (f *Factory) person(minAge, maxAge int) Person {
	return Person{
		ID:    f.seq.Next(),
		Name:  random.Pick(f.src, names),
		Age:   random.Between(f.src, minAge, maxAge),
		State: random.Pick(f.src, states),
	}
}
