package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/badge"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/identity"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/progress"
)

func TestIdentityStore_LoadSynthesizesGuestDefault(t *testing.T) {
	store := NewIdentityStore()
	ctx := context.Background()

	rec, err := store.Load(ctx, "guest-1")
	require.NoError(t, err)

	assert.Equal(t, identity.OwnerID("guest-1"), rec.OwnerID)
	assert.Equal(t, identity.TierEphemeral, rec.Tier)
	assert.Equal(t, identity.XP(0), rec.XP)
	assert.Equal(t, identity.Level(1), rec.Level)
	assert.True(t, rec.HasBadge(identity.SeedBadgeFirstLogin))
	assert.True(t, rec.HasBadge(badge.GuestMode))
}

func TestIdentityStore_SynthesisHappensOnce(t *testing.T) {
	store := NewIdentityStore()
	ctx := context.Background()

	first, err := store.Load(ctx, "guest-1")
	require.NoError(t, err)
	first.XP = 150
	first.Level = 2
	require.NoError(t, store.Save(ctx, first))

	second, err := store.Load(ctx, "guest-1")
	require.NoError(t, err)
	assert.Equal(t, identity.XP(150), second.XP, "a second load must not re-synthesize the default")
}

func TestIdentityStore_SaveIsFullOverwrite(t *testing.T) {
	store := NewIdentityStore()
	ctx := context.Background()

	rec, err := store.Load(ctx, "guest-1")
	require.NoError(t, err)
	rec.GrantBadge(badge.FirstGame)
	rec.XP = 50
	require.NoError(t, store.Save(ctx, rec))

	// Last writer wins: an older in-memory copy clobbers the newer one.
	stale := rec.Clone()
	stale.XP = 10
	stale.Badges = map[string]bool{identity.SeedBadgeFirstLogin: true}
	require.NoError(t, store.Save(ctx, stale))

	got, err := store.Load(ctx, "guest-1")
	require.NoError(t, err)
	assert.Equal(t, identity.XP(10), got.XP)
	assert.False(t, got.HasBadge(badge.FirstGame))
}

func TestIdentityStore_ReturnsClones(t *testing.T) {
	store := NewIdentityStore()
	ctx := context.Background()

	rec, err := store.Load(ctx, "guest-1")
	require.NoError(t, err)
	rec.XP = 999

	fresh, err := store.Load(ctx, "guest-1")
	require.NoError(t, err)
	assert.Equal(t, identity.XP(0), fresh.XP, "mutating a loaded copy must not leak into the store")
}

func TestIdentityStore_List(t *testing.T) {
	store := NewIdentityStore()
	ctx := context.Background()

	_, err := store.Load(ctx, "guest-1")
	require.NoError(t, err)
	_, err = store.Load(ctx, "guest-2")
	require.NoError(t, err)

	records, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestIdentityStore_SaveValidation(t *testing.T) {
	store := NewIdentityStore()
	err := store.Save(context.Background(), &identity.Record{})
	assert.ErrorIs(t, err, identity.ErrInvalidOwnerID)
}

func TestProgressStore_MissReturnsNotFound(t *testing.T) {
	store := NewProgressStore()

	_, err := store.Load(context.Background(), "guest-1")
	assert.ErrorIs(t, err, progress.ErrProgressNotFound)
}

func TestProgressStore_SaveLoadRoundTrip(t *testing.T) {
	store := NewProgressStore()
	ctx := context.Background()
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	weekly := progress.NewWeekly("guest-1", now)
	weekly.Fold(progress.Activity{OwnerID: "guest-1", XPDelta: 30, Played: true}, now)
	require.NoError(t, store.Save(ctx, weekly))

	got, err := store.Load(ctx, "guest-1")
	require.NoError(t, err)
	assert.Equal(t, 30, got.TotalXp)
	assert.Equal(t, weekly.WeekStartDate, got.WeekStartDate)

	// Stored copy is isolated from later mutation.
	weekly.Fold(progress.Activity{OwnerID: "guest-1", XPDelta: 70, Played: true}, now)
	got, err = store.Load(ctx, "guest-1")
	require.NoError(t, err)
	assert.Equal(t, 30, got.TotalXp)
}
