package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/brainquest-hub/brainquest-progress-hub/internal/application/query"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/leaderboard"
)

// topResponse is the snapshot envelope: entries in deterministic order
// (XP descending, ownerId ascending on ties).
type topResponse struct {
	Success bool                `json:"success"`
	Entries []leaderboard.Entry `json:"entries"`
	Error   string              `json:"error,omitempty"`
}

// LeaderboardHandler serves leaderboard snapshots.
type LeaderboardHandler struct {
	top      *query.GetLeaderboardHandler
	maxLimit int
	logger   *slog.Logger
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(top *query.GetLeaderboardHandler, maxLimit int, logger *slog.Logger) *LeaderboardHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &LeaderboardHandler{
		top:      top,
		maxLimit: maxLimit,
		logger:   logger.With("handler", "leaderboard"),
	}
}

// GetTop handles GET /api/v1/leaderboard/top?limit=N.
//
// The snapshot is point-in-time: it carries no subscription, and concurrent
// activity may reorder the board immediately after it is taken.
func (h *LeaderboardHandler) GetTop(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, topResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}
	if h.maxLimit > 0 && limit > h.maxLimit {
		limit = h.maxLimit
	}

	entries, err := h.top.Handle(ctx, query.GetLeaderboardQuery{Limit: limit})
	if err != nil {
		h.logger.Error("snapshot failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, topResponse{Error: "leaderboard temporarily unavailable"})
		return
	}

	if entries == nil {
		entries = []leaderboard.Entry{}
	}
	writeJSON(w, http.StatusOK, topResponse{Success: true, Entries: entries})
}

// Rebuild handles POST /api/v1/admin/leaderboard/rebuild.
func (h *LeaderboardHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	if err := h.top.Rebuild(ctx); err != nil {
		h.logger.Error("manual rebuild failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "rebuild failed")
		return
	}

	writeData(w, http.StatusOK, map[string]string{"status": "rebuilt"})
}
