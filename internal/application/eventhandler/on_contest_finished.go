// Package eventhandler contains reactions to domain events. They run after a
// contest has been resolved and only produce outputs for outside viewers; a
// failure here never changes the tournament itself.
package eventhandler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alem-hub/ozlympic/internal/application/query"
	"github.com/alem-hub/ozlympic/internal/domain/event"
	"github.com/alem-hub/ozlympic/internal/domain/shared"
	"github.com/alem-hub/ozlympic/internal/domain/standings"
	"github.com/alem-hub/ozlympic/pkg/circuitbreaker"
	"github.com/alem-hub/ozlympic/pkg/logger"
	"github.com/alem-hub/ozlympic/pkg/retry"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON CONTEST FINISHED HANDLER
// Archives the finished contest and refreshes the published standings.
// ═══════════════════════════════════════════════════════════════════════════

// ContestFinishedConfig contains the handler configuration.
type ContestFinishedConfig struct {
	// WriteTimeout bounds the archive write and cache refresh, retries included.
	WriteTimeout time.Duration
}

// DefaultContestFinishedConfig returns the default configuration.
func DefaultContestFinishedConfig() ContestFinishedConfig {
	return ContestFinishedConfig{WriteTimeout: 5 * time.Second}
}

// OnContestFinishedHandler reacts to contest.finished.
type OnContestFinishedHandler struct {
	archive   event.ResultArchive
	cache     standings.Cache
	standings *query.GetStandingsHandler

	archiveRetrier *retry.Retrier
	cacheRetrier   *retry.Retrier
	cacheBreaker   *circuitbreaker.CircuitBreaker

	logger *logger.Logger
	config ContestFinishedConfig
}

// NewOnContestFinishedHandler creates the handler. cache and standingsQuery
// may both be nil, in which case only the archive is written.
func NewOnContestFinishedHandler(
	archive event.ResultArchive,
	cache standings.Cache,
	standingsQuery *query.GetStandingsHandler,
	log *logger.Logger,
	config ContestFinishedConfig,
) *OnContestFinishedHandler {
	if log == nil {
		log = logger.Nop()
	}
	if config.WriteTimeout <= 0 {
		config = DefaultContestFinishedConfig()
	}
	log = log.With(logger.String("handler", "on_contest_finished"))

	h := &OnContestFinishedHandler{
		archive:   archive,
		cache:     cache,
		standings: standingsQuery,
		logger:    log,
		config:    config,
	}
	h.archiveRetrier = retry.ArchiveRetrier(h.onRetry("archive"))
	h.cacheRetrier = retry.CacheRetrier(h.onRetry("standings_cache"))
	h.cacheBreaker = circuitbreaker.StandingsCacheBreaker(h.onBreakerChange)

	return h
}

func (h *OnContestFinishedHandler) onRetry(target string) func(int, error, time.Duration) {
	return func(attempt int, err error, delay time.Duration) {
		h.logger.Warn("retrying write",
			logger.String("target", target),
			logger.Attempts(attempt),
			logger.Duration("delay", delay),
			logger.Err(err))
	}
}

func (h *OnContestFinishedHandler) onBreakerChange(name string, from, to circuitbreaker.State) {
	h.logger.Warn("circuit breaker state changed",
		logger.String("breaker", name),
		logger.String("from", from.String()),
		logger.String("to", to.String()))
}

// Handle implements shared.EventHandler.
func (h *OnContestFinishedHandler) Handle(e shared.Event) error {
	finished, ok := e.(shared.ContestFinishedEvent)
	if !ok {
		h.logger.Warn("received non-ContestFinishedEvent",
			logger.String("event_type", string(e.EventType())))
		return nil
	}

	log := h.logger.WithRunID(finished.RunID).With(logger.EventID(finished.ContestID))

	ctx, cancel := context.WithTimeout(context.Background(), h.config.WriteTimeout)
	defer cancel()

	var errs []error

	if h.archive != nil {
		record := RecordFromEvent(finished)
		err := h.archiveRetrier.Do(ctx, func(ctx context.Context) error {
			return h.archive.SaveEventResult(ctx, record)
		})
		if err != nil {
			log.Error("failed to archive event", logger.Err(err))
			errs = append(errs, fmt.Errorf("archive %s: %w", finished.ContestID, err))
		} else {
			log.Debug("event archived", logger.Int("rows", len(record.Rows)))
		}
	}

	if err := h.refreshStandings(ctx, finished.RunID); err != nil {
		log.Error("failed to refresh standings", logger.Err(err))
		errs = append(errs, fmt.Errorf("standings: %w", err))
	}

	return errors.Join(errs...)
}

func (h *OnContestFinishedHandler) refreshStandings(ctx context.Context, runID string) error {
	if h.cache == nil || h.standings == nil {
		return nil
	}

	res, err := h.standings.Handle(ctx, query.GetStandingsQuery{})
	if err != nil {
		return err
	}

	err = h.cacheBreaker.Execute(ctx, func(ctx context.Context) error {
		return h.cacheRetrier.Do(ctx, func(ctx context.Context) error {
			return h.cache.Replace(ctx, runID, res.Entries)
		})
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		// the failures that opened the circuit were already reported
		h.logger.Debug("standings refresh skipped, cache circuit open")
		return nil
	}
	return err
}

// RecordFromEvent converts a contest.finished event to its archived form.
func RecordFromEvent(e shared.ContestFinishedEvent) event.EventRecord {
	rows := make([]event.ResultRow, len(e.Results))
	for i, r := range e.Results {
		rows[i] = event.ResultRow{
			Position:  r.Position,
			AthleteID: r.AthleteID,
			Label:     r.Label,
			Time:      r.Time,
			Rank:      r.Rank,
			Points:    r.Points,
		}
	}

	return event.EventRecord{
		RunID:      e.RunID,
		EventID:    e.ContestID,
		Kind:       event.Kind(e.Kind),
		Referee:    e.Referee,
		FinishedAt: e.OccurredAt(),
		Rows:       rows,
	}
}
