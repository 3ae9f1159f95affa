package resilience

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
)

// flakyIdentityStore fails every call with a transient error while down.
type flakyIdentityStore struct {
	identity.Store
	down bool
}

func (s *flakyIdentityStore) Load(ctx context.Context, ownerID identity.OwnerID) (*identity.Record, error) {
	if s.down {
		return nil, shared.WrapError("identity", "Load", shared.ErrTransientIO, "io timeout", nil)
	}
	return s.Store.Load(ctx, ownerID)
}

func TestBreakerStore_PassesThroughWhenHealthy(t *testing.T) {
	identities, progresses := NewStores(memory.NewIdentityStore(), memory.NewProgressStore(), nil)
	ctx := context.Background()

	record, err := identities.Load(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, identity.OwnerID("owner-1"), record.OwnerID)

	require.NoError(t, progresses.Save(ctx, progress.NewWeekly("owner-1", record.CreatedAt)))
	weekly, err := progresses.Load(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, weekly.Days, 7)
}

func TestBreakerStore_DomainMissDoesNotTrip(t *testing.T) {
	_, progresses := NewStores(memory.NewIdentityStore(), memory.NewProgressStore(), nil)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := progresses.Load(ctx, "missing-owner")
		assert.ErrorIs(t, err, progress.ErrProgressNotFound)
	}

	// Misses are business as usual; the circuit must still be closed.
	require.NoError(t, progresses.Save(ctx, progress.NewWeekly("owner-1", time.Now().UTC())))
}

func TestBreakerStore_OpensAndDegradesToTransient(t *testing.T) {
	flaky := &flakyIdentityStore{Store: memory.NewIdentityStore(), down: true}
	identities, progresses := NewStores(flaky, memory.NewProgressStore(), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := identities.Load(ctx, "owner-1")
		require.Error(t, err)
		assert.True(t, shared.IsTransient(err))
	}

	// Circuit is open now: the backend is no longer invoked, the caller
	// still sees a transient error it knows how to degrade on.
	flaky.down = false
	_, err := identities.Load(ctx, "owner-1")
	require.Error(t, err)
	assert.True(t, shared.IsTransient(err))

	// The breaker is shared: progress calls are short-circuited too.
	err = progresses.Save(ctx, progress.NewWeekly("owner-1", time.Now().UTC()))
	require.Error(t, err)
	assert.True(t, shared.IsTransient(err))
}
