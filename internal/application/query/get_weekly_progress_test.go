package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/identity"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/progress"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/shared"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/infrastructure/persistence/memory"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/infrastructure/persistence/router"
)

var readMoment = time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)

func newProgressFixture() (*GetWeeklyProgressHandler, *memory.ProgressStore) {
	store := memory.NewProgressStore()
	handler := NewGetWeeklyProgressHandler(router.NewProgressRouter(store, store), nil)
	return handler, store
}

func TestGetWeeklyProgress_MissYieldsFreshWeek(t *testing.T) {
	handler, _ := newProgressFixture()

	weekly, err := handler.Handle(context.Background(), GetWeeklyProgressQuery{
		OwnerID: "owner-1",
		Tier:    identity.TierDurable,
		At:      readMoment,
	})
	require.NoError(t, err)

	assert.Equal(t, "2026-08-24", weekly.WeekStartDate)
	assert.Len(t, weekly.Days, 7)
	assert.Zero(t, weekly.TotalXp)
}

func TestGetWeeklyProgress_CurrentWeekServedAsIs(t *testing.T) {
	handler, store := newProgressFixture()
	ctx := context.Background()

	weekly := progress.NewWeekly("owner-1", readMoment)
	weekly.Fold(progress.Activity{OwnerID: "owner-1", XPDelta: 40, Played: true}, readMoment)
	require.NoError(t, store.Save(ctx, weekly))

	got, err := handler.Handle(ctx, GetWeeklyProgressQuery{
		OwnerID: "owner-1",
		Tier:    identity.TierDurable,
		At:      readMoment,
	})
	require.NoError(t, err)
	assert.Equal(t, 40, got.TotalXp)
}

func TestGetWeeklyProgress_StaleWeekRolledOverOnRead(t *testing.T) {
	handler, store := newProgressFixture()
	ctx := context.Background()

	lastWeek := readMoment.AddDate(0, 0, -7)
	stale := progress.NewWeekly("owner-1", lastWeek)
	stale.Fold(progress.Activity{OwnerID: "owner-1", XPDelta: 300, Played: true}, lastWeek)
	require.NoError(t, store.Save(ctx, stale))

	got, err := handler.Handle(ctx, GetWeeklyProgressQuery{
		OwnerID: "owner-1",
		Tier:    identity.TierDurable,
		At:      readMoment,
	})
	require.NoError(t, err)

	assert.Equal(t, "2026-08-24", got.WeekStartDate)
	assert.Zero(t, got.TotalXp, "a superseded week is never served")

	// The rollover was written back.
	persisted, err := store.Load(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-24", persisted.WeekStartDate)
}

func TestGetWeeklyProgress_Validation(t *testing.T) {
	handler, _ := newProgressFixture()
	ctx := context.Background()

	_, err := handler.Handle(ctx, GetWeeklyProgressQuery{Tier: identity.TierDurable})
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.ErrorIs(t, err, shared.ErrEmptyValue)

	_, err = handler.Handle(ctx, GetWeeklyProgressQuery{OwnerID: "owner-1", Tier: "plasma"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestGetIdentity(t *testing.T) {
	store := memory.NewIdentityStore()
	handler := NewGetIdentityHandler(router.NewIdentityRouter(store, store))
	ctx := context.Background()

	rec, err := handler.Handle(ctx, GetIdentityQuery{OwnerID: "owner-1", Tier: identity.TierDurable})
	require.NoError(t, err)
	assert.Equal(t, identity.Level(1), rec.Level)

	_, err = handler.Handle(ctx, GetIdentityQuery{Tier: identity.TierDurable})
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.ErrorIs(t, err, shared.ErrEmptyValue)
}

func TestGetWeeklyProgress_WritebackGateSkipsPersist(t *testing.T) {
	handler, store := newProgressFixture()
	handler.SetWritebackGate(func(ownerID string) bool { return false })
	ctx := context.Background()

	lastWeek := readMoment.AddDate(0, 0, -7)
	stale := progress.NewWeekly("owner-1", lastWeek)
	stale.Fold(progress.Activity{OwnerID: "owner-1", XPDelta: 300, Played: true}, lastWeek)
	require.NoError(t, store.Save(ctx, stale))

	got, err := handler.Handle(ctx, GetWeeklyProgressQuery{
		OwnerID: "owner-1",
		Tier:    identity.TierDurable,
		At:      readMoment,
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-08-24", got.WeekStartDate)

	// The stale document stays in place until the next write path runs.
	persisted, err := store.Load(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-17", persisted.WeekStartDate)
}
