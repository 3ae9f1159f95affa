// Package eventhandler contains asynchronous reactions to domain events.
package eventhandler

import (
	"context"
	"log/slog"
	"time"

	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/leaderboard"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/shared"
)

// cacheWriteTimeout bounds one ranking-cache upsert so a stuck cache
// cannot pin an event-bus worker.
const cacheWriteTimeout = 3 * time.Second

// ══════════════════════════════════════════════════════════════════════════════
// ON ENTRY CHANGED
// Folds a rank-relevant identity change into the ranking cache and fans it
// out to connected viewers. Both legs are best-effort: a failed cache write
// is logged, a failed delivery is dropped, nothing reaches gameplay.
// ══════════════════════════════════════════════════════════════════════════════

// OnEntryChangedHandler reacts to leaderboard.entry_changed events.
type OnEntryChangedHandler struct {
	cache       leaderboard.RankingCache
	broadcaster leaderboard.Broadcaster
	logger      *slog.Logger
}

// NewOnEntryChangedHandler creates a new OnEntryChangedHandler.
func NewOnEntryChangedHandler(
	cache leaderboard.RankingCache,
	broadcaster leaderboard.Broadcaster,
	logger *slog.Logger,
) *OnEntryChangedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnEntryChangedHandler{
		cache:       cache,
		broadcaster: broadcaster,
		logger:      logger.With("event_handler", "on_entry_changed"),
	}
}

// Handle processes one entry-changed event.
func (h *OnEntryChangedHandler) Handle(event shared.Event) error {
	changed, ok := event.(shared.EntryChangedEvent)
	if !ok {
		h.logger.Warn("unexpected event type", "event_type", event.EventType())
		return nil
	}

	entry := leaderboard.Entry{
		OwnerID: changed.AggregateID(),
		XP:      changed.XP,
		Level:   changed.Level,
		Avatar:  changed.Avatar,
	}

	ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
	defer cancel()

	if h.cache != nil {
		if err := h.cache.Upsert(ctx, entry); err != nil {
			h.logger.Error("ranking cache upsert failed", "owner_id", entry.OwnerID, "error", err)
		}
	}

	if h.broadcaster != nil {
		h.broadcaster.Publish(entry)
	}
	return nil
}
