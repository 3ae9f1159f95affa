package query

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/identity"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/progress"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/shared"
)

// GetWeeklyProgressQuery requests the current weekly record of one owner.
type GetWeeklyProgressQuery struct {
	// OwnerID is the opaque owner id.
	OwnerID string

	// Tier selects the backing store.
	Tier identity.Tier

	// At is the reading moment (defaults to now). Rollover is evaluated
	// lazily against it: a stale week is replaced, never served.
	At time.Time
}

// GetWeeklyProgressHandler serves the weekly record, applying the lazy
// rollover rule on read so a caller never sees a superseded week.
type GetWeeklyProgressHandler struct {
	progresses progress.Router
	logger     *slog.Logger

	// writebackGate, when set, decides per owner whether a rolled-over
	// week is persisted on read.
	writebackGate func(ownerID string) bool
}

// NewGetWeeklyProgressHandler creates a new GetWeeklyProgressHandler.
func NewGetWeeklyProgressHandler(progresses progress.Router, logger *slog.Logger) *GetWeeklyProgressHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &GetWeeklyProgressHandler{
		progresses: progresses,
		logger:     logger.With("query", "get_weekly_progress"),
	}
}

// SetWritebackGate installs a per-owner toggle for the read-path rollover
// write-back. Nil (the default) means write-back always happens.
func (h *GetWeeklyProgressHandler) SetWritebackGate(gate func(ownerID string) bool) {
	h.writebackGate = gate
}

// Handle returns the owner's weekly record for the current week. A missing
// or stale record yields a fresh zeroed week; the fresh record is written
// back best-effort so the discard is durable too.
func (h *GetWeeklyProgressHandler) Handle(ctx context.Context, q GetWeeklyProgressQuery) (*progress.Weekly, error) {
	if q.OwnerID == "" {
		return nil, shared.WrapError("progress", "GetWeeklyProgress", shared.ErrValidation,
			"owner_id is required", shared.ErrEmptyValue)
	}
	if !q.Tier.IsValid() {
		return nil, shared.WrapError("progress", "GetWeeklyProgress", shared.ErrValidation,
			fmt.Sprintf("unknown tier %q", q.Tier), identity.ErrInvalidTier)
	}

	now := q.At
	if now.IsZero() {
		now = time.Now().UTC()
	}

	ownerID := identity.OwnerID(q.OwnerID)
	store := h.progresses.Resolve(q.Tier)

	weekly, err := store.Load(ctx, ownerID)
	if err != nil {
		if err == progress.ErrProgressNotFound {
			return progress.NewWeekly(ownerID, now), nil
		}
		return nil, fmt.Errorf("get_weekly_progress: load failed: %w", err)
	}

	if !weekly.NeedsRollover(now) {
		return weekly, nil
	}

	// Просроченная неделя отбрасывается без архивации.
	fresh := progress.NewWeekly(ownerID, now)
	if h.writebackGate == nil || h.writebackGate(q.OwnerID) {
		if err := store.Save(ctx, fresh); err != nil {
			h.logger.Warn("rollover write-back failed", "owner_id", ownerID, "error", err)
		}
	}
	return fresh, nil
}
