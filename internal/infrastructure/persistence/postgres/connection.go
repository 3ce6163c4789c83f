// Package postgres records finished contests in PostgreSQL. It owns the pgx
// connection pool, a small embedded migrator and the archive itself.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrConnectionClosed is returned by every call made after Close.
var ErrConnectionClosed = errors.New("postgres: connection pool is closed")

// PoolOptions tunes the pool built from a database URL. Zero fields keep the
// URL's (or pgx's) values.
type PoolOptions struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	ConnectTimeout  time.Duration
}

// DefaultPoolOptions suits a single console session writing a few records.
func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		ConnectTimeout:  10 * time.Second,
	}
}

// PoolConfig parses databaseURL and applies o.
func (o PoolOptions) PoolConfig(databaseURL string) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse database URL: %w", err)
	}

	if o.MaxConns > 0 {
		cfg.MaxConns = o.MaxConns
	}
	if o.MinConns > 0 && o.MinConns <= cfg.MaxConns {
		cfg.MinConns = o.MinConns
	}
	if o.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = o.MaxConnLifetime
	}
	if o.ConnectTimeout > 0 {
		cfg.ConnConfig.ConnectTimeout = o.ConnectTimeout
	}
	cfg.HealthCheckPeriod = time.Minute

	return cfg, nil
}

// Connection guards a pgx pool so that calls after Close fail with
// ErrConnectionClosed instead of panicking inside pgx.
type Connection struct {
	mu     sync.RWMutex
	pool   *pgxpool.Pool
	closed bool
}

// NewConnection opens a pool and pings the server once.
func NewConnection(ctx context.Context, databaseURL string, opts PoolOptions) (*Connection, error) {
	cfg, err := opts.PoolConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return &Connection{pool: pool}, nil
}

// Close releases the pool. Calling it twice is harmless.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.pool.Close()
}

// acquire runs fn with the pool under the read lock.
func (c *Connection) acquire(fn func(*pgxpool.Pool) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed || c.pool == nil {
		return ErrConnectionClosed
	}
	return fn(c.pool)
}

// WithTx runs fn in a read-committed transaction. It commits when fn returns
// nil and rolls back otherwise, including on panic.
func (c *Connection) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	return c.acquire(func(pool *pgxpool.Pool) error {
		tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer func() {
			if p := recover(); p != nil {
				_ = tx.Rollback(ctx)
				panic(p)
			}
		}()

		if err := fn(tx); err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				return fmt.Errorf("%w (rollback: %v)", err, rbErr)
			}
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		return nil
	})
}

// Exec runs a statement outside a transaction.
func (c *Connection) Exec(ctx context.Context, sql string, args ...any) error {
	return c.acquire(func(pool *pgxpool.Pool) error {
		_, err := pool.Exec(ctx, sql, args...)
		return err
	})
}

// Query runs a query outside a transaction. The caller closes the rows.
func (c *Connection) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	var rows pgx.Rows
	err := c.acquire(func(pool *pgxpool.Pool) error {
		var err error
		rows, err = pool.Query(ctx, sql, args...)
		return err
	})
	return rows, err
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR CLASSIFICATION
// ══════════════════════════════════════════════════════════════════════════════

// IsConstraintViolation reports whether err is an integrity constraint
// violation (SQLSTATE class 23). Repeating the statement cannot fix it.
func IsConstraintViolation(err error) bool {
	code := sqlState(err)
	return len(code) == 5 && code[:2] == "23"
}

// IsTransient reports whether repeating the statement may succeed: lost
// connections, serialization conflicts and a restarting server.
func IsTransient(err error) bool {
	if err == nil ||
		errors.Is(err, ErrConnectionClosed) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	switch sqlState(err) {
	case "40001", "40P01", "57P01", "57P03":
		return true
	case "":
	default:
		return false
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	return pgconn.SafeToRetry(err)
}

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
