// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/occurlog/internal/logging"
)

// readinessTimeout bounds the database ping of HealthReady.
const readinessTimeout = 2 * time.Second

// HealthStatus is the body of the health endpoints.
type HealthStatus struct {
	Status            string  `json:"status"`
	DatabaseConnected bool    `json:"database_connected"`
	WebSocketClients  int     `json:"websocket_clients"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// HealthLive answers as long as the process serves HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, HealthStatus{
		Status:        "alive",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	})
}

// HealthReady answers 200 when the database responds and 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		logging.CtxErr(r.Context(), err).Msg("Readiness check failed")
		NewResponseWriter(w, r).ServiceUnavailable("database is not reachable")
		return
	}

	status := HealthStatus{
		Status:            "ready",
		DatabaseConnected: true,
		UptimeSeconds:     time.Since(h.startTime).Seconds(),
	}
	if h.hub != nil {
		status.WebSocketClients = h.hub.GetClientCount()
	}
	WriteSuccess(w, r, status)
}
