// Package retry re-runs storage writes that failed for a transient reason.
// Adapters decide what is transient by marking their errors Retryable or
// Permanent; anything unmarked is returned at once.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MARKERS
// ══════════════════════════════════════════════════════════════════════════════

type marked struct {
	err       error
	retryable bool
}

func (m *marked) Error() string { return m.err.Error() }
func (m *marked) Unwrap() error { return m.err }

func mark(err error, retryable bool) error {
	if err == nil {
		return nil
	}
	return &marked{err: err, retryable: retryable}
}

// Retryable marks err as worth another attempt.
func Retryable(err error) error { return mark(err, true) }

// Permanent marks err as final, even under a custom policy.
func Permanent(err error) error { return mark(err, false) }

// IsRetryable reports whether err carries a Retryable mark.
func IsRetryable(err error) bool {
	var m *marked
	return errors.As(err, &m) && m.retryable
}

// IsPermanent reports whether err carries a Permanent mark.
func IsPermanent(err error) bool {
	var m *marked
	return errors.As(err, &m) && !m.retryable
}

// unmark strips the outermost marker so callers see the adapter's error.
func unmark(err error) error {
	if m, ok := err.(*marked); ok {
		return m.err
	}
	return err
}

// ══════════════════════════════════════════════════════════════════════════════
// RETRIER
// ══════════════════════════════════════════════════════════════════════════════

// Policy controls how many attempts are made and how long to wait between
// them. The wait grows by Factor from Delay up to MaxDelay, then moves by up
// to Jitter of itself in either direction.
type Policy struct {
	Attempts int
	Delay    time.Duration
	MaxDelay time.Duration
	Factor   float64
	Jitter   float64

	// OnRetry is called before each wait.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retrier runs operations under a Policy.
type Retrier struct {
	policy Policy
}

// New creates a Retrier. Zero fields fall back to a single attempt, a
// 100ms delay, a 30s cap and doubling.
func New(p Policy) *Retrier {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.Delay <= 0 {
		p.Delay = 100 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 30 * time.Second
	}
	p.MaxDelay = max(p.MaxDelay, p.Delay)
	if p.Factor < 1 {
		p.Factor = 2
	}
	p.Jitter = min(max(p.Jitter, 0), 1)
	return &Retrier{policy: p}
}

// ArchiveRetrier is used for results archive writes. Archive drivers mark
// connection failures Retryable; constraint violations stay permanent.
func ArchiveRetrier(onRetry func(attempt int, err error, delay time.Duration)) *Retrier {
	return New(Policy{
		Attempts: 3,
		Delay:    50 * time.Millisecond,
		MaxDelay: time.Second,
		Factor:   2,
		Jitter:   0.05,
		OnRetry:  onRetry,
	})
}

// CacheRetrier is used for standings cache refreshes. The cache is rebuilt
// after every contest, so it gives up quickly.
func CacheRetrier(onRetry func(attempt int, err error, delay time.Duration)) *Retrier {
	return New(Policy{
		Attempts: 2,
		Delay:    25 * time.Millisecond,
		MaxDelay: 250 * time.Millisecond,
		Factor:   1.5,
		Jitter:   0.1,
		OnRetry:  onRetry,
	})
}

// Attempts returns the maximum number of attempts.
func (r *Retrier) Attempts() int {
	return r.policy.Attempts
}

// Do runs op until it succeeds, fails without a Retryable mark, or the
// attempts run out. Marks are removed from the returned error. Once ctx is
// done the last failure is returned, or ctx.Err() if op never ran.
func (r *Retrier) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var last error

	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			if last != nil {
				return unmark(last)
			}
			return ctx.Err()
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		last = err

		if !IsRetryable(err) || attempt >= r.policy.Attempts {
			return unmark(err)
		}

		wait := r.backoff(attempt)
		if r.policy.OnRetry != nil {
			r.policy.OnRetry(attempt, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return unmark(last)
		case <-timer.C:
		}
	}
}

// backoff returns the wait after the given failed attempt.
func (r *Retrier) backoff(attempt int) time.Duration {
	p := r.policy
	d := math.Min(float64(p.Delay)*math.Pow(p.Factor, float64(attempt-1)), float64(p.MaxDelay))
	if p.Jitter > 0 {
		d += d * p.Jitter * (2*rand.Float64() - 1)
	}
	return time.Duration(math.Max(d, 0))
}
