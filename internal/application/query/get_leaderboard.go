// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/identity"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/leaderboard"
)

// DefaultLeaderboardLimit is used when the caller does not specify a limit.
const DefaultLeaderboardLimit = 10

// GetLeaderboardQuery requests a point-in-time top-N snapshot.
type GetLeaderboardQuery struct {
	// Limit is the maximum number of entries (defaults to
	// DefaultLeaderboardLimit when zero or negative).
	Limit int
}

// GetLeaderboardHandler serves leaderboard snapshots from the ranking cache,
// falling back to a rebuild from the identity stores when the cache is cold.
type GetLeaderboardHandler struct {
	cache     leaderboard.RankingCache
	durable   identity.Store
	ephemeral identity.Store
	logger    *slog.Logger
}

// NewGetLeaderboardHandler creates a new GetLeaderboardHandler.
func NewGetLeaderboardHandler(
	cache leaderboard.RankingCache,
	durable identity.Store,
	ephemeral identity.Store,
	logger *slog.Logger,
) *GetLeaderboardHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &GetLeaderboardHandler{
		cache:     cache,
		durable:   durable,
		ephemeral: ephemeral,
		logger:    logger.With("query", "get_leaderboard"),
	}
}

// Handle returns the current top-N in deterministic order: XP descending,
// ownerId ascending on ties. The snapshot is point-in-time; concurrent
// activity may reorder it immediately after.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, q GetLeaderboardQuery) ([]leaderboard.Entry, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	entries, err := h.cache.Top(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("get_leaderboard: cache read failed: %w", err)
	}
	if len(entries) > 0 {
		return entries, nil
	}

	// Cold cache: rebuild from both identity tiers, then serve again.
	if err := h.rebuild(ctx); err != nil {
		return nil, err
	}

	entries, err = h.cache.Top(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("get_leaderboard: cache read after rebuild failed: %w", err)
	}
	return entries, nil
}

// Rebuild repopulates the ranking cache from the identity stores.
// Exposed for startup warm-up.
func (h *GetLeaderboardHandler) Rebuild(ctx context.Context) error {
	return h.rebuild(ctx)
}

func (h *GetLeaderboardHandler) rebuild(ctx context.Context) error {
	var entries []leaderboard.Entry

	for _, store := range []identity.Store{h.durable, h.ephemeral} {
		if store == nil {
			continue
		}
		records, err := store.List(ctx)
		if err != nil {
			return fmt.Errorf("get_leaderboard: rebuild listing failed: %w", err)
		}
		for _, rec := range records {
			entries = append(entries, leaderboard.FromIdentity(rec))
		}
	}

	if err := h.cache.Rebuild(ctx, entries); err != nil {
		return fmt.Errorf("get_leaderboard: cache rebuild failed: %w", err)
	}

	h.logger.Info("ranking cache rebuilt", "entries", len(entries))
	return nil
}
