package query

import (
	"context"
	"fmt"

	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/identity"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/shared"
)

// GetIdentityQuery requests one owner's persistent record (xp, level, badges).
type GetIdentityQuery struct {
	OwnerID string
	Tier    identity.Tier
}

// GetIdentityHandler serves identity records. A durable-tier miss is resolved
// by the store itself through default-record synthesis, so this handler never
// surfaces a not-found to the caller.
type GetIdentityHandler struct {
	identities identity.Router
}

// NewGetIdentityHandler creates a new GetIdentityHandler.
func NewGetIdentityHandler(identities identity.Router) *GetIdentityHandler {
	return &GetIdentityHandler{identities: identities}
}

// Handle returns the owner's record for its tier.
func (h *GetIdentityHandler) Handle(ctx context.Context, q GetIdentityQuery) (*identity.Record, error) {
	if q.OwnerID == "" {
		return nil, shared.WrapError("identity", "GetIdentity", shared.ErrValidation,
			"owner_id is required", shared.ErrEmptyValue)
	}
	if !q.Tier.IsValid() {
		return nil, shared.WrapError("identity", "GetIdentity", shared.ErrValidation,
			fmt.Sprintf("unknown tier %q", q.Tier), identity.ErrInvalidTier)
	}

	rec, err := h.identities.Resolve(q.Tier).Load(ctx, identity.OwnerID(q.OwnerID))
	if err != nil {
		return nil, fmt.Errorf("get_identity: load failed: %w", err)
	}
	return rec, nil
}
