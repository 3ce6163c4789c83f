// Package random provides the uniform integer source used by athlete generation
// and roster drawing. Callers depend on Source so tests can script the draws.
package random

import (
	"math/rand/v2"
	"time"
)

// Source is the randomness provider.
type Source interface {
	// Intn returns a uniform int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Between returns a uniform int in the inclusive range [min, max].
// If max < min the bounds are swapped.
func Between(src Source, min, max int) int {
	if max < min {
		min, max = max, min
	}
	return min + src.Intn(max-min+1)
}

// Pick returns a uniformly chosen element of items. It panics on an empty slice.
func Pick[T any](src Source, items []T) T {
	return items[src.Intn(len(items))]
}

// PCG is a Source backed by math/rand/v2's PCG generator.
type PCG struct {
	rng *rand.Rand
}

// New returns a seeded Source. A zero seed seeds from the wall clock.
func New(seed int64) *PCG {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &PCG{rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))}
}

// Intn implements Source.
func (p *PCG) Intn(n int) int {
	return p.rng.IntN(n)
}
