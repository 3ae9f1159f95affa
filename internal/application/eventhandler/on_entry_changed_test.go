package eventhandler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/leaderboard"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/shared"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/infrastructure/messaging"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/infrastructure/persistence/memory"
)

func TestOnEntryChanged_UpdatesCacheAndBroadcasts(t *testing.T) {
	cache := memory.NewRankingCache()
	hub := messaging.NewBroadcastHub(messaging.BroadcastHubConfig{ViewerBuffer: 4})
	defer hub.Close()

	stream, err := hub.Subscribe("viewer-1")
	require.NoError(t, err)

	handler := NewOnEntryChangedHandler(cache, hub, nil)

	event := shared.NewEntryChangedEvent("owner-1", 120, 2, "https://cdn.brainquest.app/a.png")
	require.NoError(t, handler.Handle(event))

	top, err := cache.Top(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, leaderboard.Entry{
		OwnerID: "owner-1",
		XP:      120,
		Level:   2,
		Avatar:  "https://cdn.brainquest.app/a.png",
	}, top[0])

	assert.Equal(t, top[0], <-stream)
}

func TestOnEntryChanged_IgnoresForeignEventTypes(t *testing.T) {
	cache := memory.NewRankingCache()
	handler := NewOnEntryChangedHandler(cache, nil, nil)

	assert.NoError(t, handler.Handle(shared.NewXPGainedEvent("owner-1", 10, 10)))

	top, err := cache.Top(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestOnEntryChanged_CacheFailureStillBroadcasts(t *testing.T) {
	hub := messaging.NewBroadcastHub(messaging.BroadcastHubConfig{ViewerBuffer: 4})
	defer hub.Close()

	stream, err := hub.Subscribe("viewer-1")
	require.NoError(t, err)

	handler := NewOnEntryChangedHandler(failingCache{}, hub, nil)

	// Cache errors are absorbed; the live stream still gets the entry.
	require.NoError(t, handler.Handle(shared.NewEntryChangedEvent("owner-1", 50, 1, "")))
	assert.Equal(t, "owner-1", (<-stream).OwnerID)
}

type failingCache struct{}

func (failingCache) Upsert(context.Context, leaderboard.Entry) error {
	return shared.WrapError("leaderboard", "Upsert", shared.ErrTransientIO, "cache down", nil)
}

func (failingCache) Top(context.Context, int) ([]leaderboard.Entry, error) {
	return nil, shared.WrapError("leaderboard", "Top", shared.ErrTransientIO, "cache down", nil)
}

func (failingCache) Rebuild(context.Context, []leaderboard.Entry) error {
	return shared.WrapError("leaderboard", "Rebuild", shared.ErrTransientIO, "cache down", nil)
}
