// Package roster fills a contest with a random, eligible, duplicate-free set
// of competitors drawn from the tournament pool and assigns its referee.
package roster

import (
	"context"
	"fmt"

	"github.com/alem-hub/ozlympic/internal/domain/event"
	"github.com/alem-hub/ozlympic/internal/domain/shared"
	"github.com/alem-hub/ozlympic/pkg/logger"
	"github.com/alem-hub/ozlympic/pkg/random"
)

// DefaultMaxDrawAttempts bounds rejection sampling for one roster.
const DefaultMaxDrawAttempts = 10000

// OfficialProvider hands out a fresh referee for each contest.
type OfficialProvider interface {
	NextOfficial() event.Referee
}

// OfficialFunc adapts a function to OfficialProvider.
type OfficialFunc func() event.Referee

// NextOfficial implements OfficialProvider.
func (f OfficialFunc) NextOfficial() event.Referee {
	return f()
}

// Option configures a Builder.
type Option func(*Builder)

// WithMaxDrawAttempts caps the number of draws per roster. Non-positive
// values are ignored.
func WithMaxDrawAttempts(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.maxAttempts = n
		}
	}
}

// WithLogger sets the logger used for draw diagnostics.
func WithLogger(l *logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}

// Builder assigns competitors and a referee to contests.
type Builder struct {
	src         random.Source
	officials   OfficialProvider
	maxAttempts int
	log         *logger.Logger
}

// NewBuilder creates a builder drawing from src.
func NewBuilder(src random.Source, officials OfficialProvider, opts ...Option) *Builder {
	b := &Builder{
		src:         src,
		officials:   officials,
		maxAttempts: DefaultMaxDrawAttempts,
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// MaxDrawAttempts returns the configured draw cap.
func (b *Builder) MaxDrawAttempts() int {
	return b.maxAttempts
}

// Build draws a target size uniformly in [MinCompetitors, MaxCompetitors],
// samples that many distinct eligible competitors from pool and commits them
// to ev together with a new referee. On error ev is left unchanged.
func (b *Builder) Build(ctx context.Context, pool []event.Competitor, ev *event.Event) error {
	if ev == nil {
		return shared.ErrNilEvent
	}
	if b.officials == nil {
		return shared.ErrNoOfficials
	}
	if len(pool) == 0 {
		return shared.ErrEmptyPool
	}
	if ev.Size() > 0 {
		return shared.ErrRosterNotEmpty
	}

	kind := ev.Kind()
	target := random.Between(b.src, event.MinCompetitors, event.MaxCompetitors)
	log := b.log.With(logger.EventID(ev.ID()), logger.EventKind(kind.String()))

	if eligible := countEligible(pool, kind); eligible < target {
		log.Warn("roster cannot be filled",
			logger.Int("eligible", eligible), logger.Int("target", target))
		return shared.WrapError("roster", "Build", shared.ErrInvalidState,
			fmt.Sprintf("not enough eligible athletes for %s: %d available, %d needed", ev.ID(), eligible, target),
			shared.ErrInsufficientPool)
	}

	selected, attempts, err := b.draw(ctx, pool, kind, target)
	if err != nil {
		log.Warn("roster draw failed", logger.Attempts(attempts), logger.Err(err))
		return err
	}

	if err := ev.AddCompetitors(selected...); err != nil {
		return err
	}
	if err := ev.SetReferee(b.officials.NextOfficial()); err != nil {
		return err
	}

	log.Debug("roster built",
		logger.Int("size", len(selected)), logger.Attempts(attempts),
		logger.String("referee", ev.Referee().Label()))
	return nil
}

// draw performs rejection sampling over the whole pool.
func (b *Builder) draw(ctx context.Context, pool []event.Competitor, kind event.Kind, target int) ([]event.Competitor, int, error) {
	selected := make([]event.Competitor, 0, target)
	chosen := make(map[event.Competitor]struct{}, target)

	attempts := 0
	for len(selected) < target {
		if attempts >= b.maxAttempts {
			return nil, attempts, shared.WrapError("roster", "Build", shared.ErrInvalidState,
				fmt.Sprintf("gave up after %d draws with %d of %d athletes", attempts, len(selected), target),
				shared.ErrDrawLimitExceeded)
		}
		if attempts%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, attempts, err
			}
		}
		attempts++

		c := pool[b.src.Intn(len(pool))]
		if c == nil || !c.CanCompete(kind) {
			continue
		}
		if _, dup := chosen[c]; dup {
			continue
		}
		chosen[c] = struct{}{}
		selected = append(selected, c)
	}
	return selected, attempts, nil
}

func countEligible(pool []event.Competitor, kind event.Kind) int {
	seen := make(map[event.Competitor]struct{}, len(pool))
	for _, c := range pool {
		if c == nil || !c.CanCompete(kind) {
			continue
		}
		seen[c] = struct{}{}
	}
	return len(seen)
}
