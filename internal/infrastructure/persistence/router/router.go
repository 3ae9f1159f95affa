// Package router selects a persistence backend by durability tier.
// The choice is made once, at identity-resolution time, through a small
// polymorphic interface pair - there is no tier branching anywhere else.
package router

import (
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/identity"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/progress"
)

// IdentityRouter implements identity.Router over the two tiers.
type IdentityRouter struct {
	ephemeral identity.Store
	durable   identity.Store
}

// NewIdentityRouter creates a router over the two identity backends.
func NewIdentityRouter(ephemeral, durable identity.Store) *IdentityRouter {
	return &IdentityRouter{ephemeral: ephemeral, durable: durable}
}

// Resolve returns the store for the given tier.
// Unknown tiers resolve to the ephemeral store: an identity we cannot
// classify must never be written into the durable backend.
func (r *IdentityRouter) Resolve(tier identity.Tier) identity.Store {
	if tier == identity.TierDurable {
		return r.durable
	}
	return r.ephemeral
}

// ProgressRouter implements progress.Router over the two tiers.
type ProgressRouter struct {
	ephemeral progress.Store
	durable   progress.Store
}

// NewProgressRouter creates a router over the two progress backends.
func NewProgressRouter(ephemeral, durable progress.Store) *ProgressRouter {
	return &ProgressRouter{ephemeral: ephemeral, durable: durable}
}

// Resolve returns the store for the given tier.
func (r *ProgressRouter) Resolve(tier identity.Tier) progress.Store {
	if tier == identity.TierDurable {
		return r.durable
	}
	return r.ephemeral
}
