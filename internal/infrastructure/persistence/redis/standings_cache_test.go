package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alem-hub/ozlympic/internal/domain/standings"
	"github.com/alem-hub/ozlympic/pkg/retry"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntries() []standings.Entry {
	return []standings.Entry{
		{Rank: 1, AthleteID: 7, Label: "Cliff(7)", Profile: "sprinter", Age: 22, State: "WA", Points: 8},
		{Rank: 2, AthleteID: 3, Label: "Ada(3)", Profile: "swimmer", Age: 30, State: "NSW", Points: 5},
		{Rank: 2, AthleteID: 9, Label: "Bo(9)", Profile: "cyclist", Age: 41, State: "SA", Points: 5},
	}
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "ozlympic:standings:run-1:order", StandingsOrderKey("run-1"))
	assert.Equal(t, "ozlympic:standings:run-1:entries", StandingsEntriesKey("run-1"))
	assert.Equal(t, "ozlympic:run:run-1:meta", RunMetaKey("run-1"))
	assert.Equal(t, "localhost:6379", DefaultConfig().Addr())
}

func TestCachedEntry_RoundTrip(t *testing.T) {
	for _, e := range sampleEntries() {
		assert.Equal(t, e, toCached(e).entry())
	}
}

func TestDecodeEntries(t *testing.T) {
	t.Run("keeps id order", func(t *testing.T) {
		raw := []any{
			`{"rank":2,"athlete_id":9,"label":"Bo(9)","points":5}`,
			`{"rank":1,"athlete_id":7,"label":"Cliff(7)","points":8}`,
		}
		got, err := decodeEntries([]string{"9", "7"}, raw)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, 9, got[0].AthleteID)
		assert.Equal(t, standings.Rank(1), got[1].Rank)
	})

	t.Run("missing field", func(t *testing.T) {
		_, err := decodeEntries([]string{"9"}, []any{nil})
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("bad json", func(t *testing.T) {
		_, err := decodeEntries([]string{"9"}, []any{"{"})
		assert.ErrorIs(t, err, ErrCacheSerialization)
	})

	t.Run("unexpected type", func(t *testing.T) {
		_, err := decodeEntries([]string{"9"}, []any{42})
		assert.ErrorIs(t, err, ErrCacheSerialization)
	})
}

func TestNewStandingsCache_DefaultTTL(t *testing.T) {
	s := NewStandingsCache(nil, 0)
	assert.Equal(t, DefaultStandingsTTL, s.ttl)
}

func TestStandingsCache_UnreachableServerIsRetryable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	t.Cleanup(func() { _ = client.Close() })
	s := NewStandingsCache(NewCacheFromClient(client), time.Minute)

	err := s.Replace(context.Background(), "run-1", sampleEntries())
	require.Error(t, err)
	assert.True(t, retry.IsRetryable(err))

	_, err = s.Top(context.Background(), "run-1", 3)
	assert.Error(t, err)
}

func TestStandingsCache_EmptyRunID(t *testing.T) {
	s := NewStandingsCache(nil, time.Minute)

	err := s.Replace(context.Background(), "", nil)
	assert.True(t, retry.IsPermanent(err))
	_, err = s.Top(context.Background(), "", 1)
	assert.ErrorIs(t, err, ErrCacheKeyEmpty)
}

// Runs against a real server when REDIS_TEST_ADDR is set.
func TestStandingsCache_Redis(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	s := NewStandingsCache(NewCacheFromClient(client), time.Minute)
	ctx := context.Background()
	runID := "test-" + time.Now().Format("150405.000000")
	t.Cleanup(func() { _ = s.Drop(ctx, runID) })

	require.NoError(t, s.Replace(ctx, runID, sampleEntries()))

	top, err := s.Top(ctx, runID, 2)
	require.NoError(t, err)
	assert.Equal(t, sampleEntries()[:2], top)

	all, err := s.Top(ctx, runID, 0)
	require.NoError(t, err)
	assert.Equal(t, sampleEntries(), all)

	// a smaller table replaces the old one entirely
	require.NoError(t, s.Replace(ctx, runID, sampleEntries()[:1]))
	all, err = s.Top(ctx, runID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	refreshed, err := s.LastRefresh(ctx, runID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), refreshed, time.Minute)

	ttl, err := client.TTL(ctx, StandingsOrderKey(runID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
