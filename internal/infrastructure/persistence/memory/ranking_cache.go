package memory

import (
	"context"
	"sync"

	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/leaderboard"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY RANKING CACHE
// ══════════════════════════════════════════════════════════════════════════════

// RankingCache implements leaderboard.RankingCache on a mutex-guarded map.
// Used when Redis is disabled, and as the test double.
type RankingCache struct {
	mu      sync.RWMutex
	entries map[string]leaderboard.Entry
}

// NewRankingCache creates an empty in-memory ranking cache.
func NewRankingCache() *RankingCache {
	return &RankingCache{entries: make(map[string]leaderboard.Entry)}
}

// Upsert replaces the owner's row.
func (c *RankingCache) Upsert(_ context.Context, entry leaderboard.Entry) error {
	if entry.OwnerID == "" {
		return shared.ErrInvalidID
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.OwnerID] = entry
	return nil
}

// Top returns at most n entries in the deterministic leaderboard order.
func (c *RankingCache) Top(_ context.Context, n int) ([]leaderboard.Entry, error) {
	c.mu.RLock()
	all := make([]leaderboard.Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		all = append(all, entry)
	}
	c.mu.RUnlock()

	return leaderboard.TopN(all, n), nil
}

// Rebuild replaces the cache content with the given entries.
func (c *RankingCache) Rebuild(_ context.Context, entries []leaderboard.Entry) error {
	next := make(map[string]leaderboard.Entry, len(entries))
	for _, entry := range entries {
		if entry.OwnerID != "" {
			next[entry.OwnerID] = entry
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = next
	return nil
}
