// Package main is the entry point of the Ozlympic console game.
//
// It generates a tournament of athletes and contests, then hands the terminal
// to a menu where the operator selects, predicts and runs each contest.
// Finished contests are archived (memory, SQLite or PostgreSQL) and the
// standings are optionally published to Redis.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alem-hub/ozlympic/config"
	"github.com/alem-hub/ozlympic/internal/application/command"
	"github.com/alem-hub/ozlympic/internal/application/eventhandler"
	"github.com/alem-hub/ozlympic/internal/application/query"
	"github.com/alem-hub/ozlympic/internal/application/session"
	"github.com/alem-hub/ozlympic/internal/domain/event"
	"github.com/alem-hub/ozlympic/internal/domain/shared"
	"github.com/alem-hub/ozlympic/internal/domain/standings"
	"github.com/alem-hub/ozlympic/internal/infrastructure/messaging"
	"github.com/alem-hub/ozlympic/internal/infrastructure/persistence/memory"
	"github.com/alem-hub/ozlympic/internal/infrastructure/persistence/postgres"
	"github.com/alem-hub/ozlympic/internal/infrastructure/persistence/redis"
	"github.com/alem-hub/ozlympic/internal/infrastructure/persistence/sqlite"
	"github.com/alem-hub/ozlympic/internal/interface/console"
	"github.com/alem-hub/ozlympic/pkg/logger"
	"github.com/alem-hub/ozlympic/pkg/random"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, in io.Reader, out io.Writer) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION AND LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Options{
		Output:    os.Stderr,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.Observability.LogCaller,
	}).With(
		logger.String("app", cfg.App.Name),
		logger.String("version", cfg.App.Version),
	)
	log.Info("starting",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("archive", cfg.Archive.Driver),
		logger.Bool("redis", cfg.Redis.Enabled))

	// ─────────────────────────────────────────────────────────────────────────
	// 2. STORAGE
	// ─────────────────────────────────────────────────────────────────────────
	archive, closeArchive, err := openArchive(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeArchive()

	cache, closeCache := openStandingsCache(cfg, log)
	defer closeCache()

	// ─────────────────────────────────────────────────────────────────────────
	// 3. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	bus := messaging.NewBus(messaging.BusConfig{Logger: log, EnableMetrics: true})
	bus.Use(messaging.LoggingMiddleware(log))
	defer func() {
		snap := bus.Metrics().Snapshot()
		log.Info("event bus closed",
			logger.Int64("published", snap.TotalPublished),
			logger.Int64("handler_failures", snap.HandlerFailures))
		closeBus(bus, log)
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 4. TOURNAMENT
	// ─────────────────────────────────────────────────────────────────────────
	setup := command.NewSetupTournamentHandler(random.New(cfg.Tournament.Seed), bus, log,
		command.SetupTournamentConfig{MaxDrawAttempts: cfg.Tournament.MaxDrawAttempts})

	tournament, err := setup.Handle(ctx, command.SetupTournamentCommand{
		Athletes: cfg.Tournament.Athletes,
		Events:   cfg.Tournament.Events,
	})
	if err != nil {
		return fmt.Errorf("failed to set up tournament: %w", err)
	}
	log = log.WithRunID(string(tournament.RunID))

	results := query.NewGetResultsHandler(tournament)
	standingsQuery := query.NewGetStandingsHandler(tournament)

	// ─────────────────────────────────────────────────────────────────────────
	// 5. HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	onFinished := eventhandler.NewOnContestFinishedHandler(archive, cache, standingsQuery, log,
		eventhandler.ContestFinishedConfig{WriteTimeout: cfg.Archive.WriteTimeout})
	tally := eventhandler.NewPredictionTally(log)

	if err := bus.Subscribe(shared.EventContestFinished, onFinished.Handle); err != nil {
		return fmt.Errorf("failed to subscribe archive handler: %w", err)
	}
	if err := bus.Subscribe(shared.EventPredictionChecked, tally.Handle); err != nil {
		return fmt.Errorf("failed to subscribe prediction tally: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. CONSOLE
	// ─────────────────────────────────────────────────────────────────────────
	sess := session.New(tournament, command.NewRunEventHandler(bus, log), log)
	menu := console.NewMenu(in, out, sess, results, standingsQuery, tally, log, console.DefaultConfig())

	err = menu.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info("interrupted")
		return nil
	}
	return err
}

// closeBus closes the event bus, logging rather than returning a failure
// since it runs on the way out.
func closeBus(bus io.Closer, log *logger.Logger) {
	if err := bus.Close(); err != nil {
		log.Warn("failed to close event bus", logger.Err(err))
	}
}

// openArchive opens the configured results archive and returns its closer.
func openArchive(ctx context.Context, cfg *config.Config, log *logger.Logger) (event.ResultArchive, func(), error) {
	switch cfg.Archive.Driver {
	case config.ArchiveSQLite:
		a, err := sqlite.Open(cfg.Archive.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite archive: %w", err)
		}
		log.Info("sqlite archive opened", logger.String("path", cfg.Archive.SQLitePath))
		return a, func() {
			if err := a.Close(); err != nil {
				log.Warn("failed to close sqlite archive", logger.Err(err))
			}
		}, nil

	case config.ArchivePostgres:
		conn, err := postgres.NewConnection(ctx, cfg.Database.URL, postgres.PoolOptions{
			MaxConns:        int32(cfg.Database.MaxConns),
			MinConns:        int32(cfg.Database.MinConns),
			MaxConnLifetime: cfg.Database.ConnMaxLifetime,
			ConnectTimeout:  cfg.Database.ConnectTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("postgres archive ready")
		return postgres.NewResultArchive(conn), conn.Close, nil

	default:
		return memory.NewResultArchive(), func() {}, nil
	}
}

// openStandingsCache connects to Redis when enabled. An unreachable server
// falls back to the in-memory cache.
func openStandingsCache(cfg *config.Config, log *logger.Logger) (standings.Cache, func()) {
	if !cfg.Redis.Enabled {
		return memory.NewStandingsCache(), func() {}
	}

	rc := redis.DefaultConfig()
	rc.Host = cfg.Redis.Host
	rc.Port = cfg.Redis.Port
	rc.Password = cfg.Redis.Password
	rc.DB = cfg.Redis.DB
	rc.PoolSize = cfg.Redis.PoolSize
	rc.DialTimeout = cfg.Redis.DialTimeout
	rc.ReadTimeout = cfg.Redis.ReadTimeout
	rc.WriteTimeout = cfg.Redis.WriteTimeout

	c, err := redis.NewCache(rc)
	if err != nil {
		log.Warn("failed to connect to Redis, using in-memory standings", logger.Err(err))
		return memory.NewStandingsCache(), func() {}
	}
	log.Info("Redis connection established", logger.String("addr", rc.Addr()))

	return redis.NewStandingsCache(c, cfg.Redis.StandingsTTL), func() {
		if err := c.Close(); err != nil {
			log.Warn("failed to close Redis", logger.Err(err))
		}
	}
}
