package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/leaderboard"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/shared"
)

func newTestCache(t *testing.T) *RankingCache {
	t.Helper()

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRankingCache(client)
}

func TestRankingCache_UpsertReplacesRow(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Upsert(ctx, leaderboard.Entry{OwnerID: "owner-1", XP: 10, Level: 1}))
	require.NoError(t, cache.Upsert(ctx, leaderboard.Entry{OwnerID: "owner-1", XP: 120, Level: 2}))

	top, err := cache.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 120, top[0].XP, "upsert is a full row replacement, not a merge")
}

func TestRankingCache_TopOrderAndLimit(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	for _, e := range []leaderboard.Entry{
		{OwnerID: "bob", XP: 50},
		{OwnerID: "alice", XP: 50},
		{OwnerID: "carol", XP: 200},
	} {
		require.NoError(t, cache.Upsert(ctx, e))
	}

	top, err := cache.Top(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "carol", top[0].OwnerID)
	assert.Equal(t, "alice", top[1].OwnerID, "XP tie broken by ownerId ascending")
}

// ZREVRANGE returns equal scores in reverse-lexicographic member order, so a
// tie group straddling the page boundary used to surface the wrong owner.
func TestRankingCache_TopTieAtPageBoundary(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	for _, e := range []leaderboard.Entry{
		{OwnerID: "aaa", XP: 100},
		{OwnerID: "zzz", XP: 100},
		{OwnerID: "mmm", XP: 50},
	} {
		require.NoError(t, cache.Upsert(ctx, e))
	}

	top, err := cache.Top(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "aaa", top[0].OwnerID, "lowest ownerId wins the tie, not the ZSET member order")

	top, err = cache.Top(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "aaa", top[0].OwnerID)
	assert.Equal(t, "zzz", top[1].OwnerID)

	top, err = cache.Top(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "mmm", top[2].OwnerID)
}

func TestRankingCache_TopEmptyAndNonPositive(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	top, err := cache.Top(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, top)

	top, err = cache.Top(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestRankingCache_Rebuild(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Upsert(ctx, leaderboard.Entry{OwnerID: "stale", XP: 999}))
	require.NoError(t, cache.Rebuild(ctx, []leaderboard.Entry{
		{OwnerID: "owner-1", XP: 10},
		{OwnerID: "owner-2", XP: 20},
	}))

	top, err := cache.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "owner-2", top[0].OwnerID)
}

func TestRankingCache_UpsertValidation(t *testing.T) {
	cache := newTestCache(t)
	err := cache.Upsert(context.Background(), leaderboard.Entry{})
	assert.ErrorIs(t, err, shared.ErrInvalidID)
}
