// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/tripsync/coordinator"
	"github.com/danielhkuo/tripsync/middleware"
	"github.com/danielhkuo/tripsync/models"
	"github.com/danielhkuo/tripsync/poller"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // same policy as middleware.CORS
	},
}

// WatchHandler streams session status over a websocket. It is a push
// rendition of the poller: the server polls on the client's behalf and only
// sends snapshots whose version changed.
type WatchHandler struct {
	coord    *coordinator.Coordinator
	interval time.Duration
	timeout  time.Duration
}

func NewWatchHandler(coord *coordinator.Coordinator, interval, timeout time.Duration) *WatchHandler {
	return &WatchHandler{coord: coord, interval: interval, timeout: timeout}
}

// Watch handles GET /sessions/{id}/watch
//
// Query parameter until selects when the stream ends: "converged" (default)
// once the session leaves collecting, "resolved" once voting finished.
func (h *WatchHandler) Watch(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathSessionID(w, r)
	if !ok {
		return
	}

	done := poller.Converged
	switch r.URL.Query().Get("until") {
	case "", "converged":
	case "resolved":
		done = poller.Resolved
	default:
		middleware.WriteError(w, http.StatusBadRequest, "invalid_argument",
			"until must be converged or resolved", models.RetryFixRequest)
		return
	}

	// Unknown sessions get a plain HTTP error instead of an upgrade
	if _, err := h.coord.GetSession(r.Context(), sessionID); err != nil {
		writeError(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "session_id", sessionID, "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The client never sends anything meaningful; reading only detects close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	slog.Info("watch started", "session_id", sessionID, "interval", h.interval.String(), "timeout", h.timeout.String())

	lastVersion := int64(-1)
	for s, err := range poller.WatchUntil(ctx, h.coord, sessionID, h.interval, h.timeout, done) {
		var msg models.WatchMessage
		switch {
		case errors.Is(err, poller.ErrWatchTimedOut):
			msg = models.WatchMessage{Type: models.WatchTimeout}
		case err != nil && ctx.Err() != nil:
			slog.Info("watch cancelled", "session_id", sessionID)
			return
		case err != nil:
			e := classify(err)
			msg = models.WatchMessage{Type: models.WatchError, Error: &models.ErrorResponse{
				Error:   http.StatusText(e.status),
				Code:    e.code,
				Message: e.message,
				Retry:   models.RetryHint(err),
			}}
		default:
			if s.Version == lastVersion {
				continue
			}
			lastVersion = s.Version
			status := coordinator.BuildStatus(s, time.Now())
			msg = models.WatchMessage{Type: models.WatchStatus, Status: &status}
		}

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			slog.Info("watch client gone", "session_id", sessionID, "error", err)
			return
		}
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "watch finished"))
	slog.Info("watch finished", "session_id", sessionID)
}
