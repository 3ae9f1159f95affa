package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/leaderboard"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RANKING CACHE
// ══════════════════════════════════════════════════════════════════════════════

// Key layout:
//   - Sorted set "leaderboard:xp" maps ownerID -> XP score
//   - Hash "leaderboard:info" maps ownerID -> Entry JSON
//
// O(log N) upserts, O(log N + M) top-N range reads.
const (
	keyRankingXP   = "leaderboard:xp"
	keyRankingInfo = "leaderboard:info"
)

// RankingCache implements leaderboard.RankingCache on Redis sorted sets.
type RankingCache struct {
	client *redis.Client
}

// NewRankingCache creates a new RankingCache.
func NewRankingCache(client *redis.Client) *RankingCache {
	return &RankingCache{client: client}
}

// Upsert replaces the owner's row in the cache.
func (c *RankingCache) Upsert(ctx context.Context, entry leaderboard.Entry) error {
	if entry.OwnerID == "" {
		return shared.ErrInvalidID
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("ranking_cache: failed to marshal entry: %w", err)
	}

	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, keyRankingXP, redis.Z{Score: float64(entry.XP), Member: entry.OwnerID})
	pipe.HSet(ctx, keyRankingInfo, entry.OwnerID, data)

	if _, err := pipe.Exec(ctx); err != nil {
		return shared.WrapError("leaderboard", "Upsert", shared.ErrTransientIO, "cache update failed", err)
	}
	return nil
}

// Top returns at most n entries, XP descending with ties broken by ownerID
// ascending. Redis orders equal scores by member lexicographically in
// reverse on ZREVRANGE, so a tie group cut by the page boundary would keep
// the wrong members: the candidate page is widened to every member sharing
// the boundary score, then sorted and truncated in Go.
func (c *RankingCache) Top(ctx context.Context, n int) ([]leaderboard.Entry, error) {
	if n <= 0 {
		return nil, nil
	}

	page, err := c.client.ZRevRangeWithScores(ctx, keyRankingXP, 0, int64(n)-1).Result()
	if err != nil {
		return nil, shared.WrapError("leaderboard", "Top", shared.ErrTransientIO, "range read failed", err)
	}
	if len(page) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(page))
	seen := make(map[string]bool, len(page))
	for _, z := range page {
		id, ok := z.Member.(string)
		if !ok {
			continue
		}
		ids = append(ids, id)
		seen[id] = true
	}

	// A full page may end inside a tie group. Pull everyone sharing the
	// boundary score and let the deterministic sort pick the survivors.
	if len(page) == n {
		boundary := strconv.FormatFloat(page[len(page)-1].Score, 'f', -1, 64)
		tied, err := c.client.ZRangeByScore(ctx, keyRankingXP, &redis.ZRangeBy{
			Min: boundary,
			Max: boundary,
		}).Result()
		if err != nil {
			return nil, shared.WrapError("leaderboard", "Top", shared.ErrTransientIO, "boundary read failed", err)
		}
		for _, id := range tied {
			if !seen[id] {
				ids = append(ids, id)
				seen[id] = true
			}
		}
	}

	docs, err := c.client.HMGet(ctx, keyRankingInfo, ids...).Result()
	if err != nil {
		return nil, shared.WrapError("leaderboard", "Top", shared.ErrTransientIO, "info read failed", err)
	}

	entries := make([]leaderboard.Entry, 0, len(ids))
	for _, doc := range docs {
		raw, ok := doc.(string)
		if !ok {
			continue // evicted info row; the next Rebuild repairs it
		}

		var entry leaderboard.Entry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	leaderboard.Sort(entries)
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// Rebuild atomically replaces the cache content with the given entries.
func (c *RankingCache) Rebuild(ctx context.Context, entries []leaderboard.Entry) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, keyRankingXP, keyRankingInfo)

	members := make([]redis.Z, 0, len(entries))
	info := make(map[string]interface{}, len(entries))
	for _, entry := range entries {
		if entry.OwnerID == "" {
			continue
		}

		members = append(members, redis.Z{Score: float64(entry.XP), Member: entry.OwnerID})
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("ranking_cache: failed to marshal entry: %w", err)
		}
		info[entry.OwnerID] = data
	}

	if len(members) > 0 {
		pipe.ZAdd(ctx, keyRankingXP, members...)
		pipe.HSet(ctx, keyRankingInfo, info)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return shared.WrapError("leaderboard", "Rebuild", shared.ErrTransientIO, "cache rebuild failed", err)
	}
	return nil
}
