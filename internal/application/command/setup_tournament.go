// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/alem-hub/ozlympic/internal/application/session"
	"github.com/alem-hub/ozlympic/internal/domain/athlete"
	"github.com/alem-hub/ozlympic/internal/domain/event"
	"github.com/alem-hub/ozlympic/internal/domain/roster"
	"github.com/alem-hub/ozlympic/internal/domain/shared"
	"github.com/alem-hub/ozlympic/pkg/logger"
	"github.com/alem-hub/ozlympic/pkg/random"
	"github.com/google/uuid"
)

// ══════════════════════════════════════════════════════════════════════════════
// SETUP TOURNAMENT COMMAND
// Generates the athlete pool, schedules the contests and draws every roster.
// ══════════════════════════════════════════════════════════════════════════════

// SetupTournamentCommand contains the size of the tournament to generate.
type SetupTournamentCommand struct {
	// Athletes generated before rosters are drawn.
	Athletes int

	// Events is the number of contests, each of a uniformly drawn kind.
	Events int
}

// Validate validates the command.
func (c SetupTournamentCommand) Validate() error {
	if c.Athletes < 1 {
		return errors.New("setup_tournament: at least one athlete is required")
	}
	if c.Events < 1 {
		return errors.New("setup_tournament: at least one event is required")
	}
	if c.Events > 99 {
		return errors.New("setup_tournament: event ids have two digits, at most 99 events")
	}
	return nil
}

// SetupTournamentConfig contains configuration for the handler.
type SetupTournamentConfig struct {
	// MaxDrawAttempts caps rejection sampling per roster.
	MaxDrawAttempts int

	// Attempts is how many whole tournaments are generated before giving up
	// when the pool is too thin for a drawn roster.
	Attempts int
}

// DefaultSetupTournamentConfig returns default configuration.
func DefaultSetupTournamentConfig() SetupTournamentConfig {
	return SetupTournamentConfig{
		MaxDrawAttempts: roster.DefaultMaxDrawAttempts,
		Attempts:        5,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// SetupTournamentHandler handles the SetupTournamentCommand.
type SetupTournamentHandler struct {
	src            random.Source
	eventPublisher shared.EventPublisher
	log            *logger.Logger
	config         SetupTournamentConfig
}

// NewSetupTournamentHandler creates a new SetupTournamentHandler. A nil
// publisher skips the TournamentReady event.
func NewSetupTournamentHandler(
	src random.Source,
	eventPublisher shared.EventPublisher,
	log *logger.Logger,
	config SetupTournamentConfig,
) *SetupTournamentHandler {
	def := DefaultSetupTournamentConfig()
	if config.MaxDrawAttempts <= 0 {
		config.MaxDrawAttempts = def.MaxDrawAttempts
	}
	if config.Attempts <= 0 {
		config.Attempts = def.Attempts
	}
	if log == nil {
		log = logger.Nop()
	}

	return &SetupTournamentHandler{
		src:            src,
		eventPublisher: eventPublisher,
		log:            log.With(logger.Component("setup_tournament")),
		config:         config,
	}
}

// Handle executes the setup tournament command.
func (h *SetupTournamentHandler) Handle(ctx context.Context, cmd SetupTournamentCommand) (*session.Tournament, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("setup_tournament: validation failed: %w", err)
	}

	runID, err := shared.NewRunID(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("setup_tournament: %w", err)
	}
	log := h.log.WithRunID(runID.String())

	var t *session.Tournament
	for attempt := 1; ; attempt++ {
		t, err = h.generate(ctx, runID, cmd, log)
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrInsufficientPool) && !errors.Is(err, shared.ErrDrawLimitExceeded) {
			return nil, err
		}
		if attempt == h.config.Attempts {
			return nil, fmt.Errorf("setup_tournament: %d attempts: %w", attempt, err)
		}
		log.Warn("regenerating tournament",
			logger.Attempts(attempt),
			logger.String("reason", shared.UserMessage(err)))
	}

	log.Info("tournament ready",
		logger.Int("events", len(t.Events)),
		logger.Int("athletes", len(t.Athletes)))

	if h.eventPublisher != nil {
		ids := make([]string, len(t.Events))
		for i, ev := range t.Events {
			ids[i] = ev.ID()
		}
		if err := h.eventPublisher.Publish(shared.NewTournamentReadyEvent(runID.String(), ids, len(t.Athletes))); err != nil {
			log.Warn("failed to publish tournament ready", logger.Err(err))
		}
	}

	return t, nil
}

// generate builds one candidate tournament. Athlete, official and contest
// numbering restart with every candidate.
func (h *SetupTournamentHandler) generate(
	ctx context.Context,
	runID shared.RunID,
	cmd SetupTournamentCommand,
	log *logger.Logger,
) (*session.Tournament, error) {
	people := athlete.NewFactory(h.src, shared.NewSequence(1))
	contests := shared.NewSequence(1)

	pool := make([]event.Competitor, cmd.Athletes)
	athletes := make(map[event.Competitor]*athlete.Athlete, cmd.Athletes)
	for i := range pool {
		a := people.NewAthlete()
		pool[i] = a
		athletes[a] = a
	}

	builder := roster.NewBuilder(h.src,
		roster.OfficialFunc(func() event.Referee { return people.NewOfficial() }),
		roster.WithMaxDrawAttempts(h.config.MaxDrawAttempts),
		roster.WithLogger(log))

	t := &session.Tournament{RunID: runID}
	seen := make(map[event.Competitor]bool, cmd.Athletes)

	for i := 0; i < cmd.Events; i++ {
		kind := random.Pick(h.src, event.Kinds())
		ev, err := event.New(event.FormatID(kind, contests.Next()), kind)
		if err != nil {
			return nil, fmt.Errorf("setup_tournament: %w", err)
		}
		if err := builder.Build(ctx, pool, ev); err != nil {
			return nil, err
		}
		t.Events = append(t.Events, ev)

		for _, c := range ev.Roster() {
			if !seen[c] {
				seen[c] = true
				t.Athletes = append(t.Athletes, athletes[c])
			}
		}
	}

	return t, nil
}
