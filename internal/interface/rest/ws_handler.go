package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/leaderboard"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamHandler serves the live leaderboard stream.
//
// The stream is best-effort and carries no replay: a viewer connecting after
// a publish sees nothing until the next one. The snapshot endpoint is the
// explicit fallback - a manual re-pull, never an automatic catch-up.
type StreamHandler struct {
	broadcaster leaderboard.Broadcaster
	logger      *slog.Logger

	// allow, when set, gates stream access per viewer key (rollout).
	allow func(viewerKey string) bool
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(broadcaster leaderboard.Broadcaster, logger *slog.Logger) *StreamHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &StreamHandler{
		broadcaster: broadcaster,
		logger:      logger.With("handler", "leaderboard_stream"),
	}
}

// SetAccessGate installs a per-viewer toggle for the stream. Nil (the
// default) means the stream is open to everyone.
func (h *StreamHandler) SetAccessGate(gate func(viewerKey string) bool) {
	h.allow = gate
}

// Subscribe handles GET /ws/leaderboard. Each received message is a full
// replacement for that owner's row, never a delta to merge.
func (h *StreamHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	if h.allow != nil {
		// Stable rollout key: the client's owner id when it identifies
		// itself, its address otherwise.
		key := r.URL.Query().Get("ownerId")
		if key == "" {
			key = r.RemoteAddr
		}
		if !h.allow(key) {
			http.Error(w, "stream not available", http.StatusForbidden)
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	viewerID := uuid.NewString()
	stream, err := h.broadcaster.Subscribe(viewerID)
	if err != nil {
		h.logger.Warn("subscribe rejected", "viewer_id", viewerID, "error", err)
		_ = conn.Close()
		return
	}

	leaderboardViewers.Inc()
	h.logger.Debug("viewer connected", "viewer_id", viewerID)

	done := make(chan struct{})
	go h.readPump(conn, done)
	h.writePump(conn, stream, done)

	h.broadcaster.Unsubscribe(viewerID)
	leaderboardViewers.Dec()
	_ = conn.Close()
	h.logger.Debug("viewer disconnected", "viewer_id", viewerID)
}

// readPump drains client frames so pings/pongs and close frames are
// processed; the stream itself is one-directional.
func (h *StreamHandler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *StreamHandler) writePump(conn *websocket.Conn, stream <-chan leaderboard.Entry, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case entry, ok := <-stream:
			if !ok {
				// Hub closed: say goodbye politely.
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
				return
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(entry); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
