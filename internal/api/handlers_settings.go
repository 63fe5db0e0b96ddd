// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/occurlog/internal/auth"
	"github.com/tomtom215/occurlog/internal/logging"
	"github.com/tomtom215/occurlog/internal/models"
)

// SettingsResponse pairs the stored settings with the values in effect once
// server defaults are applied.
type SettingsResponse struct {
	Settings  models.UserSettings `json:"settings"`
	Effective models.UserSettings `json:"effective"`
}

func (h *Handler) settingsResponse(s models.UserSettings) SettingsResponse {
	resp := SettingsResponse{Settings: s, Effective: s}
	if h.config != nil {
		srv := h.config.Server
		resp.Effective = s.WithDefaults(srv.Timezone, srv.MapLatitude, srv.MapLongitude, srv.MapZoom)
	}
	return resp
}

// GetSettings returns the caller's settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsFor(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	WriteSuccess(w, r, h.settingsResponse(settings))
}

// UpdateSettings replaces the caller's settings.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	subject := auth.GetAuthSubject(r.Context())

	var req SettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	settings := req.ToSettings(subject.UserID)
	if err := h.store.UpsertUserSettings(r.Context(), &settings); err != nil {
		respondError(w, r, err)
		return
	}
	WriteSuccess(w, r, h.settingsResponse(settings))
}

// ChangePassword replaces the caller's password and signs out their other
// sessions.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	subject := auth.GetAuthSubject(r.Context())

	var req ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.accounts.ChangePassword(r.Context(), subject.UserID, req.CurrentPassword, req.NewPassword)
	if errors.Is(err, auth.ErrWrongPassword) {
		NewResponseWriter(w, r).ValidationError("current password is wrong", map[string]interface{}{"field": "current_password"})
		return
	}
	if err != nil {
		respondError(w, r, err)
		return
	}

	revoked, err := h.sessions.RevokeOtherSessions(r.Context(), subject.UserID, subject.SessionID)
	if err != nil {
		logging.CtxErr(r.Context(), err).Msg("Failed to revoke other sessions after password change")
	}
	WriteSuccess(w, r, map[string]int{"revoked_sessions": revoked})
}
