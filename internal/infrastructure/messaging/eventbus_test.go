package messaging

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/shared"
)

func newSyncBus() *InMemoryEventBus {
	return NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: false})
}

func TestEventBus_PublishToTypedHandler(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	var received []shared.Event
	err := bus.Subscribe(shared.EventXPGained, func(event shared.Event) error {
		received = append(received, event)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(shared.NewXPGainedEvent("owner-1", 10, 10)))
	require.NoError(t, bus.Publish(shared.NewLevelUpEvent("owner-1", 1, 2)))

	require.Len(t, received, 1, "handler must only see its subscribed type")
	assert.Equal(t, shared.EventXPGained, received[0].EventType())
	assert.Equal(t, "owner-1", received[0].AggregateID())
}

func TestEventBus_SubscribeAll(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	var count int
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		count++
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewXPGainedEvent("owner-1", 10, 10)))
	require.NoError(t, bus.Publish(shared.NewBadgeUnlockedEvent("owner-1", "first_game")))

	assert.Equal(t, 2, count)
}

func TestEventBus_HandlerErrorDoesNotReachPublisher(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	require.NoError(t, bus.Subscribe(shared.EventXPGained, func(shared.Event) error {
		return errors.New("projection exploded")
	}))

	assert.NoError(t, bus.Publish(shared.NewXPGainedEvent("owner-1", 10, 10)))
}

func TestEventBus_AsyncDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: true, WorkerPoolSize: 4})

	var count atomic.Int64
	var wg sync.WaitGroup
	wg.Add(10)
	require.NoError(t, bus.Subscribe(shared.EventEntryChanged, func(shared.Event) error {
		count.Add(1)
		wg.Done()
		return nil
	}))

	for i := 0; i < 10; i++ {
		require.NoError(t, bus.Publish(shared.NewEntryChangedEvent("owner-1", i, 1, "")))
	}

	wg.Wait()
	require.NoError(t, bus.Close())
	assert.Equal(t, int64(10), count.Load())
}

func TestEventBus_Closed(t *testing.T) {
	bus := newSyncBus()
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(shared.NewXPGainedEvent("owner-1", 1, 1)), ErrEventBusClosed)
	assert.ErrorIs(t, bus.Subscribe(shared.EventXPGained, func(shared.Event) error { return nil }), ErrEventBusClosed)
	assert.NoError(t, bus.Close(), "double close is a no-op")
}

func TestEventBus_NilArguments(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	assert.Error(t, bus.Subscribe(shared.EventXPGained, nil))
	assert.Error(t, bus.SubscribeAll(nil))
	assert.Error(t, bus.Publish(nil))
}
