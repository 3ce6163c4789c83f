package athlete

import (
	"testing"

	"github.com/alem-hub/ozlympic/internal/domain/event"
	"github.com/alem-hub/ozlympic/internal/domain/shared"
	"github.com/alem-hub/ozlympic/pkg/random"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// script replays fixed draws, wrapping each into [0, n).
type script struct {
	draws []int
}

func (s *script) Intn(n int) int {
	if len(s.draws) == 0 {
		return 0
	}
	v := s.draws[0]
	s.draws = s.draws[1:]
	return v % n
}

func TestProfile_CanCompete(t *testing.T) {
	tests := []struct {
		profile Profile
		kind    event.Kind
		want    bool
	}{
		{ProfileSwimmer, event.KindSwimming, true},
		{ProfileSwimmer, event.KindSprint, false},
		{ProfileSprinter, event.KindSprint, true},
		{ProfileSprinter, event.KindCycling, false},
		{ProfileCyclist, event.KindCycling, true},
		{ProfileCyclist, event.KindSwimming, false},
		{ProfileSuperAthlete, event.KindSwimming, true},
		{ProfileSuperAthlete, event.KindSprint, true},
		{ProfileSuperAthlete, event.KindCycling, true},
		{ProfileSuperAthlete, event.Kind("curling"), false},
		{Profile("coach"), event.KindSprint, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.profile)+"/"+string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.profile.CanCompete(tt.kind))
		})
	}
}

func TestAthlete_PerformWithinRange(t *testing.T) {
	src := random.New(3)
	a := NewAthlete(Person{ID: 1, Name: "Abel"}, ProfileSuperAthlete, src)

	for _, kind := range event.Kinds() {
		r := RangeFor(kind)
		for i := 0; i < 200; i++ {
			got := a.Perform(kind)
			assert.GreaterOrEqual(t, got, float64(r.Min))
			assert.LessOrEqual(t, got, float64(r.Max))
			assert.Equal(t, float64(int(got)), got, "times are whole seconds")
		}
	}
}

func TestAthlete_PointsAccumulate(t *testing.T) {
	a := NewAthlete(Person{ID: 4, Name: "Cliff"}, ProfileSprinter, &script{})
	a.AwardPoints(5)
	a.AwardPoints(3)
	a.AwardPoints(0)

	assert.Equal(t, 8, a.Points())
	assert.Equal(t, "Cliff(4)", a.Label())
	assert.Contains(t, a.String(), "[Sprinter] Cliff(4)")
}

func TestAthlete_SharedAcrossEvents(t *testing.T) {
	f := NewFactory(random.New(9), shared.NewSequence(1))
	pool := make([]*Athlete, event.MinCompetitors)
	for i := range pool {
		pool[i] = f.NewAthleteWithProfile(ProfileSuperAthlete)
	}

	total := 0
	for n, kind := range event.Kinds() {
		ev, err := event.New(event.FormatID(kind, n+1), kind)
		require.NoError(t, err)
		for _, a := range pool {
			require.NoError(t, ev.AddCompetitors(a))
		}
		require.NoError(t, ev.SetReferee(f.NewOfficial()))
		results, err := ev.Resolve()
		require.NoError(t, err)
		for _, r := range results {
			total += r.Points
		}
	}

	sum := 0
	for _, a := range pool {
		sum += a.Points()
	}
	assert.Equal(t, total, sum)
	assert.Positive(t, sum)
}

func TestFactory_NewAthlete(t *testing.T) {
	// profile, name, age, state
	src := &script{draws: []int{1, 19, 0, 5}}
	f := NewFactory(src, shared.NewSequence(10))

	a := f.NewAthlete()
	assert.Equal(t, 10, a.ID)
	assert.Equal(t, ProfileSprinter, a.Profile)
	assert.Equal(t, "Cliff", a.Name)
	assert.Equal(t, AthleteMinAge, a.Age)
	assert.Equal(t, "WA", a.State)
	assert.Zero(t, a.Points())
}

func TestFactory_SharedSequence(t *testing.T) {
	seq := shared.NewSequence(1)
	f := NewFactory(random.New(5), seq)

	a := f.NewAthlete()
	o := f.NewOfficial()
	b := f.NewAthlete()

	assert.Equal(t, []int{1, 2, 3}, []int{a.ID, o.ID, b.ID})
	assert.Equal(t, 3, seq.Last())
}

func TestFactory_AgeBounds(t *testing.T) {
	f := NewFactory(random.New(11), nil)
	for i := 0; i < 300; i++ {
		a := f.NewAthlete()
		assert.GreaterOrEqual(t, a.Age, AthleteMinAge)
		assert.LessOrEqual(t, a.Age, AthleteMaxAge)
		assert.Contains(t, states, a.State)

		o := f.NewOfficial()
		assert.GreaterOrEqual(t, o.Age, OfficialMinAge)
		assert.LessOrEqual(t, o.Age, OfficialMaxAge)
	}
}

func TestOfficial_IsReferee(t *testing.T) {
	var ref event.Referee = &Official{Person: Person{ID: 2, Name: "Duke"}}
	assert.Equal(t, "Duke(2)", ref.Label())
}
