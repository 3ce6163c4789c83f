package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("connection reset")

func fast(attempts int) *Retrier {
	return New(Policy{Attempts: attempts, Delay: time.Millisecond, MaxDelay: 2 * time.Millisecond})
}

func TestDo_RetriesRetryableUntilSuccess(t *testing.T) {
	calls := 0
	var retried []int
	r := New(Policy{
		Attempts: 5,
		Delay:    time.Millisecond,
		OnRetry: func(attempt int, _ error, _ time.Duration) {
			retried = append(retried, attempt)
		},
	})

	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return Retryable(errFlaky)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDo_ExhaustedReturnsUnmarked(t *testing.T) {
	calls := 0
	err := fast(3).Do(context.Background(), func(context.Context) error {
		calls++
		return Retryable(errFlaky)
	})

	assert.Equal(t, 3, calls)
	assert.Same(t, errFlaky, err)
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	err := fast(5).Do(context.Background(), func(context.Context) error {
		calls++
		return Permanent(errFlaky)
	})

	assert.Equal(t, 1, calls)
	assert.Same(t, errFlaky, err)
	assert.False(t, IsPermanent(err))
}

func TestDo_UnmarkedErrorNotRetried(t *testing.T) {
	calls := 0
	err := fast(5).Do(context.Background(), func(context.Context) error {
		calls++
		return errFlaky
	})

	assert.Equal(t, 1, calls)
	assert.Same(t, errFlaky, err)
}

func TestDo_WrappedMarkStillRetried(t *testing.T) {
	calls := 0
	err := fast(2).Do(context.Background(), func(context.Context) error {
		calls++
		return fmt.Errorf("save R01: %w", Retryable(errFlaky))
	})

	assert.Equal(t, 2, calls)
	assert.ErrorIs(t, err, errFlaky)
}

func TestDo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := fast(3).Do(ctx, func(context.Context) error {
		calls++
		return nil
	})
	assert.Zero(t, calls)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_CancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := New(Policy{Attempts: 3, Delay: time.Hour})

	err := r.Do(ctx, func(context.Context) error {
		cancel()
		return Retryable(errFlaky)
	})
	assert.Same(t, errFlaky, err)
}

func TestBackoff_Capped(t *testing.T) {
	r := New(Policy{Attempts: 6, Delay: 10 * time.Millisecond, MaxDelay: 40 * time.Millisecond})
	assert.Equal(t, 10*time.Millisecond, r.backoff(1))
	assert.Equal(t, 20*time.Millisecond, r.backoff(2))
	assert.Equal(t, 40*time.Millisecond, r.backoff(3))
	assert.Equal(t, 40*time.Millisecond, r.backoff(6))
}

func TestNew_Defaults(t *testing.T) {
	r := New(Policy{})
	assert.Equal(t, 1, r.Attempts())
	assert.Equal(t, 100*time.Millisecond, r.backoff(1))
}

func TestPresetsAndMarkers(t *testing.T) {
	assert.Equal(t, 3, ArchiveRetrier(nil).Attempts())
	assert.Equal(t, 2, CacheRetrier(nil).Attempts())

	assert.Nil(t, Retryable(nil))
	assert.Nil(t, Permanent(nil))
	assert.True(t, IsRetryable(Retryable(errFlaky)))
	assert.False(t, IsPermanent(Retryable(errFlaky)))
	assert.True(t, IsPermanent(Permanent(errFlaky)))
	assert.False(t, IsRetryable(errFlaky))
}
