package messaging

import (
	"log/slog"
	"sync"

	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/leaderboard"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD BROADCAST HUB
// ══════════════════════════════════════════════════════════════════════════════

// BroadcastHub fans rank-relevant entries out to all currently subscribed
// viewers, best-effort: no acknowledgement and no replay buffer. A viewer
// that connects after a publish will not see it until the next publish or an
// explicit snapshot pull.
//
// The hub is an explicitly owned object: constructed in cmd/server, passed
// to its consumers, closed on shutdown.
type BroadcastHub struct {
	mu      sync.RWMutex
	viewers map[string]chan leaderboard.Entry
	buffer  int
	logger  *slog.Logger
	closed  bool
}

// BroadcastHubConfig contains configuration for the hub.
type BroadcastHubConfig struct {
	// ViewerBuffer is the per-viewer channel buffer. A viewer whose buffer
	// is full has the entry dropped silently (BroadcastDeliveryFailure is
	// reduced to a log line, per the best-effort contract).
	ViewerBuffer int

	// Logger for structured logging.
	Logger *slog.Logger
}

// NewBroadcastHub creates a new broadcast hub.
func NewBroadcastHub(config BroadcastHubConfig) *BroadcastHub {
	if config.ViewerBuffer <= 0 {
		config.ViewerBuffer = 16
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &BroadcastHub{
		viewers: make(map[string]chan leaderboard.Entry),
		buffer:  config.ViewerBuffer,
		logger:  config.Logger,
	}
}

// Publish fans the entry out to all current subscribers.
// Publishers never block: a slow viewer loses the update and recovers via
// an explicit snapshot re-pull.
func (h *BroadcastHub) Publish(entry leaderboard.Entry) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}

	for viewerID, ch := range h.viewers {
		select {
		case ch <- entry:
		default:
			h.logger.Debug("broadcast delivery dropped",
				"viewer_id", viewerID,
				"owner_id", entry.OwnerID,
			)
		}
	}
}

// Subscribe yields a live stream of entries for the viewer until Unsubscribe.
// A second Subscribe with the same viewer id replaces the first stream.
func (h *BroadcastHub) Subscribe(viewerID string) (<-chan leaderboard.Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, shared.ErrBroadcastClosed
	}

	if old, ok := h.viewers[viewerID]; ok {
		close(old)
	}

	ch := make(chan leaderboard.Entry, h.buffer)
	h.viewers[viewerID] = ch

	h.logger.Debug("viewer subscribed", "viewer_id", viewerID, "viewers", len(h.viewers))
	return ch, nil
}

// Unsubscribe disconnects the viewer and closes its stream.
func (h *BroadcastHub) Unsubscribe(viewerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.viewers[viewerID]; ok {
		close(ch)
		delete(h.viewers, viewerID)
		h.logger.Debug("viewer unsubscribed", "viewer_id", viewerID)
	}
}

// ViewerCount returns the number of currently subscribed viewers.
func (h *BroadcastHub) ViewerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.viewers)
}

// Close tears the hub down and disconnects all viewers.
func (h *BroadcastHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for viewerID, ch := range h.viewers {
		close(ch)
		delete(h.viewers, viewerID)
	}

	h.logger.Info("broadcast hub closed")
}
