package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nicolelin19/mealmax/internal/domain/leaderboard"
)

const (
	defaultTTL  = 30 * time.Second
	keyIndexSet = "leaderboard:keys"
)

// LeaderboardCache implements leaderboard.Cache.
//
// Key schema:
//
//	leaderboard:{sort}:{limit} - JSON array of entries
//	leaderboard:keys           - set of every cached leaderboard key
type LeaderboardCache struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ leaderboard.Cache = (*LeaderboardCache)(nil)

// NewLeaderboardCache creates a cache whose entries expire after ttl.
func NewLeaderboardCache(c *Client, ttl time.Duration) *LeaderboardCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &LeaderboardCache{rdb: c.rdb, ttl: ttl}
}

// Key returns the cache key of a normalized query.
func Key(q leaderboard.Query) string {
	if !q.Limited {
		return "leaderboard:" + q.SortBy + ":all"
	}
	return "leaderboard:" + q.SortBy + ":" + strconv.Itoa(q.Limit)
}

// Get returns the cached entries for q, if any.
func (lc *LeaderboardCache) Get(ctx context.Context, q leaderboard.Query) ([]leaderboard.Entry, bool, error) {
	data, err := lc.rdb.Get(ctx, Key(q)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis: get %s: %w", Key(q), err)
	}

	var entries []leaderboard.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("redis: unmarshal %s: %w", Key(q), err)
	}
	return entries, true, nil
}

// Set stores entries for q and records the key in the index set.
func (lc *LeaderboardCache) Set(ctx context.Context, q leaderboard.Query, entries []leaderboard.Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("redis: marshal %s: %w", Key(q), err)
	}

	key := Key(q)
	pipe := lc.rdb.TxPipeline()
	pipe.Set(ctx, key, data, lc.ttl)
	pipe.SAdd(ctx, keyIndexSet, key)
	pipe.Expire(ctx, keyIndexSet, lc.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

// Invalidate deletes every cached leaderboard.
func (lc *LeaderboardCache) Invalidate(ctx context.Context) error {
	keys, err := lc.rdb.SMembers(ctx, keyIndexSet).Result()
	if err != nil {
		return fmt.Errorf("redis: list leaderboard keys: %w", err)
	}

	pipe := lc.rdb.TxPipeline()
	if len(keys) > 0 {
		pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, keyIndexSet)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: invalidate leaderboards: %w", err)
	}
	return nil
}
