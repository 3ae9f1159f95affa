package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/brainquest-hub/brainquest-progress-hub/internal/application/command"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/application/query"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/identity"
)

const handlerTimeout = 10 * time.Second

// ActivityHandler serves the activity write path and the progress reads.
type ActivityHandler struct {
	record   *command.RecordActivityHandler
	progress *query.GetWeeklyProgressHandler
	identity *query.GetIdentityHandler
	logger   *slog.Logger
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(
	record *command.RecordActivityHandler,
	progress *query.GetWeeklyProgressHandler,
	identityQ *query.GetIdentityHandler,
	logger *slog.Logger,
) *ActivityHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ActivityHandler{
		record:   record,
		progress: progress,
		identity: identityQ,
		logger:   logger.With("handler", "activity"),
	}
}

// recordActivityRequest matches the client JSON of one finished mini-game.
type recordActivityRequest struct {
	OwnerID       string `json:"ownerId"`
	Tier          string `json:"tier"`
	XPEarned      int    `json:"xpEarned"`
	GamePlayed    bool   `json:"gamePlayed"`
	GameCompleted bool   `json:"gameCompleted"`
}

// RecordActivity handles POST /api/v1/activity.
//
// There is no idempotency key: a client retry folds again, additively.
func (h *ActivityHandler) RecordActivity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	var req recordActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.record.Handle(ctx, command.RecordActivityCommand{
		OwnerID:       req.OwnerID,
		Tier:          identity.Tier(req.Tier),
		XPEarned:      req.XPEarned,
		GamePlayed:    req.GamePlayed,
		GameCompleted: req.GameCompleted,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	activitiesRecorded.Inc()
	writeData(w, http.StatusOK, result)
}

// GetWeeklyProgress handles GET /api/v1/progress/{ownerId}.
func (h *ActivityHandler) GetWeeklyProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	weekly, err := h.progress.Handle(ctx, query.GetWeeklyProgressQuery{
		OwnerID: mux.Vars(r)["ownerId"],
		Tier:    tierFromQuery(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeData(w, http.StatusOK, weekly)
}

// GetIdentity handles GET /api/v1/identity/{ownerId}.
func (h *ActivityHandler) GetIdentity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	rec, err := h.identity.Handle(ctx, query.GetIdentityQuery{
		OwnerID: mux.Vars(r)["ownerId"],
		Tier:    tierFromQuery(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeData(w, http.StatusOK, rec)
}

// tierFromQuery reads the ?tier= parameter, defaulting to durable.
func tierFromQuery(r *http.Request) identity.Tier {
	if t := r.URL.Query().Get("tier"); t != "" {
		return identity.Tier(t)
	}
	return identity.TierDurable
}
