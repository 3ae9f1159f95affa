package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/identity"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/infrastructure/persistence/memory"
)

func TestIdentityRouter_ResolvesByTierOnly(t *testing.T) {
	ephemeral := memory.NewIdentityStore()
	durable := memory.NewIdentityStore()
	r := NewIdentityRouter(ephemeral, durable)

	assert.Same(t, ephemeral, r.Resolve(identity.TierEphemeral))
	assert.Same(t, durable, r.Resolve(identity.TierDurable))
}

func TestIdentityRouter_UnknownTierFallsBackToEphemeral(t *testing.T) {
	ephemeral := memory.NewIdentityStore()
	durable := memory.NewIdentityStore()
	r := NewIdentityRouter(ephemeral, durable)

	// An identity we cannot classify must never reach the durable backend.
	assert.Same(t, ephemeral, r.Resolve(identity.Tier("plasma")))
	assert.Same(t, ephemeral, r.Resolve(identity.Tier("")))
}

func TestProgressRouter_ResolvesByTierOnly(t *testing.T) {
	ephemeral := memory.NewProgressStore()
	durable := memory.NewProgressStore()
	r := NewProgressRouter(ephemeral, durable)

	assert.Same(t, ephemeral, r.Resolve(identity.TierEphemeral))
	assert.Same(t, durable, r.Resolve(identity.TierDurable))
	assert.Same(t, ephemeral, r.Resolve(identity.Tier("unknown")))
}
