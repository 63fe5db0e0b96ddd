// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package api

import (
	"net/http"

	"github.com/tomtom215/occurlog/internal/auth"
	"github.com/tomtom215/occurlog/internal/logging"
	"github.com/tomtom215/occurlog/internal/metrics"
	ws "github.com/tomtom215/occurlog/internal/websocket"
)

// WebSocket upgrades the connection and attaches it to the hub, which then
// pushes dashboard updates and notifications to the caller.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	subject := auth.GetAuthSubject(r.Context())
	if subject == nil {
		NewResponseWriter(w, r).Unauthorized("authentication required")
		return
	}
	if h.hub == nil {
		NewResponseWriter(w, r).ServiceUnavailable("live updates are not available")
		return
	}

	// Upgrade writes its own error response.
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		metrics.WSErrors.WithLabelValues("upgrade").Inc()
		logging.CtxWarn(r.Context()).Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(h.hub, conn, subject.UserID, subject.Username)
	if !client.Start() {
		logging.CtxWarn(r.Context()).Msg("WebSocket hub is stopped, connection closed")
		return
	}
	logging.CtxInfo(r.Context()).
		Str("username", subject.Username).
		Uint64("client_id", client.ID()).
		Msg("WebSocket client connected")
}
