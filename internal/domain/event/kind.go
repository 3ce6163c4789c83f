// Package event contains the contest entity and its resolution engine:
// roster capacity, referee assignment, competition ranking, point award and
// the stable reorder of the roster by time.
package event

import (
	"strings"

	"github.com/alem-hub/ozlympic/internal/domain/shared"
)

// Kind is the sport category of a contest.
type Kind string

const (
	KindSwimming Kind = "swimming"
	KindSprint   Kind = "sprint"
	KindCycling  Kind = "cycling"
)

var allKinds = []Kind{KindSwimming, KindSprint, KindCycling}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// IsValid checks the kind against the fixed enumeration.
func (k Kind) IsValid() bool {
	switch k {
	case KindSwimming, KindSprint, KindCycling:
		return true
	default:
		return false
	}
}

// Symbol returns the letter used as the contest id prefix.
func (k Kind) Symbol() byte {
	switch k {
	case KindSwimming:
		return 'S'
	case KindSprint:
		return 'R'
	case KindCycling:
		return 'C'
	default:
		return '?'
	}
}

// String returns the lower-case name.
func (k Kind) String() string {
	return string(k)
}

// ParseKind parses a case-insensitive kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", shared.ErrInvalidKind
	}
	return k, nil
}
