package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/alem-hub/ozlympic/internal/domain/standings"
	"github.com/alem-hub/ozlympic/pkg/retry"
	"github.com/redis/go-redis/v9"
)

// cachedEntry is the JSON form of a standings entry stored in the hash.
type cachedEntry struct {
	Rank      int    `json:"rank"`
	AthleteID int    `json:"athlete_id"`
	Label     string `json:"label"`
	Profile   string `json:"profile"`
	Age       int    `json:"age"`
	State     string `json:"state"`
	Points    int    `json:"points"`
}

func toCached(e standings.Entry) cachedEntry {
	return cachedEntry{
		Rank:      int(e.Rank),
		AthleteID: e.AthleteID,
		Label:     e.Label,
		Profile:   e.Profile,
		Age:       e.Age,
		State:     e.State,
		Points:    e.Points,
	}
}

func (c cachedEntry) entry() standings.Entry {
	return standings.Entry{
		Rank:      standings.Rank(c.Rank),
		AthleteID: c.AthleteID,
		Label:     c.Label,
		Profile:   c.Profile,
		Age:       c.Age,
		State:     c.State,
		Points:    c.Points,
	}
}

// runMeta is written next to the standings of a run.
type runMeta struct {
	UpdatedAt   time.Time `json:"updated_at"`
	Athletes    int       `json:"athletes"`
	TotalPoints int       `json:"total_points"`
}

// StandingsCache stores a run's standings in Redis.
//
// Layout:
//   - Sorted set StandingsOrderKey: athlete id scored by table position
//   - Hash StandingsEntriesKey: athlete id to entry JSON
//   - String RunMetaKey: refresh metadata
//
// The table position keeps the order of tied athletes stable, which a score
// of raw points would not.
type StandingsCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewStandingsCache creates a standings cache whose keys expire ttl after
// the last refresh.
func NewStandingsCache(cache *Cache, ttl time.Duration) *StandingsCache {
	if ttl <= 0 {
		ttl = DefaultStandingsTTL
	}
	return &StandingsCache{cache: cache, ttl: ttl}
}

// Replace implements standings.Cache. The old table is dropped and the new
// one written in a single MULTI/EXEC.
func (s *StandingsCache) Replace(ctx context.Context, runID string, entries []standings.Entry) error {
	if runID == "" {
		return retry.Permanent(ErrCacheKeyEmpty)
	}

	orderKey := StandingsOrderKey(runID)
	entriesKey := StandingsEntriesKey(runID)

	members := make([]redis.Z, 0, len(entries))
	fields := make(map[string]any, len(entries))
	total := 0
	for i, e := range entries {
		id := strconv.Itoa(e.AthleteID)
		data, err := json.Marshal(toCached(e))
		if err != nil {
			return retry.Permanent(fmt.Errorf("%w: %v", ErrCacheSerialization, err))
		}
		members = append(members, redis.Z{Score: float64(i), Member: id})
		fields[id] = data
		total += e.Points
	}

	meta, err := json.Marshal(runMeta{
		UpdatedAt:   time.Now().UTC(),
		Athletes:    len(entries),
		TotalPoints: total,
	})
	if err != nil {
		return retry.Permanent(fmt.Errorf("%w: %v", ErrCacheSerialization, err))
	}

	pipe := s.cache.Client().TxPipeline()
	pipe.Del(ctx, orderKey, entriesKey)
	if len(members) > 0 {
		pipe.ZAdd(ctx, orderKey, members...)
		pipe.HSet(ctx, entriesKey, fields)
		pipe.Expire(ctx, orderKey, s.ttl)
		pipe.Expire(ctx, entriesKey, s.ttl)
	}
	pipe.Set(ctx, RunMetaKey(runID), meta, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return retry.Retryable(fmt.Errorf("replace standings: %w", err))
	}
	return nil
}

// Top implements standings.Cache.
func (s *StandingsCache) Top(ctx context.Context, runID string, n int) ([]standings.Entry, error) {
	if runID == "" {
		return nil, ErrCacheKeyEmpty
	}

	stop := int64(n - 1)
	if n <= 0 {
		stop = -1
	}

	ids, err := s.cache.Client().ZRange(ctx, StandingsOrderKey(runID), 0, stop).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []standings.Entry{}, nil
	}

	raw, err := s.cache.Client().HMGet(ctx, StandingsEntriesKey(runID), ids...).Result()
	if err != nil {
		return nil, err
	}

	return decodeEntries(ids, raw)
}

// decodeEntries turns HMGET results back into entries, in the order of ids.
func decodeEntries(ids []string, raw []any) ([]standings.Entry, error) {
	out := make([]standings.Entry, 0, len(raw))
	for i, v := range raw {
		if v == nil {
			// order and entries expired at different instants
			return nil, fmt.Errorf("%w: entry %s", ErrCacheMiss, ids[i])
		}
		str, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected %T for %s", ErrCacheSerialization, v, ids[i])
		}
		var c cachedEntry
		if err := json.Unmarshal([]byte(str), &c); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCacheSerialization, err)
		}
		out = append(out, c.entry())
	}
	return out, nil
}

// LastRefresh returns when the run's standings were last replaced.
func (s *StandingsCache) LastRefresh(ctx context.Context, runID string) (time.Time, error) {
	var meta runMeta
	if err := s.cache.Get(ctx, RunMetaKey(runID), &meta); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return time.Time{}, err
		}
		return time.Time{}, fmt.Errorf("read run meta: %w", err)
	}
	return meta.UpdatedAt, nil
}

// Drop removes every key of the run.
func (s *StandingsCache) Drop(ctx context.Context, runID string) error {
	return s.cache.Delete(ctx, StandingsOrderKey(runID), StandingsEntriesKey(runID), RunMetaKey(runID))
}
