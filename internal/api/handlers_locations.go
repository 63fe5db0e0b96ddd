// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package api

import (
	"net/http"

	"github.com/tomtom215/occurlog/internal/auth"
	"github.com/tomtom215/occurlog/internal/models"
)

// ListLocations returns every location sorted by label, mapped or not.
func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.store.ListLocations(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if locations == nil {
		locations = []models.Location{}
	}
	WriteSuccess(w, r, locations)
}

// MapLocation sets the coordinates of the location named in the path.
func (h *Handler) MapLocation(w http.ResponseWriter, r *http.Request) {
	label, err := pathParam(r, "label")
	if err != nil || label == "" {
		NewResponseWriter(w, r).BadRequest("invalid location label in path")
		return
	}

	var req MapLocationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	actor := ""
	if subject := auth.GetAuthSubject(r.Context()); subject != nil {
		actor = subject.Username
	}
	if err := h.occurrences.MapLocation(r.Context(), label, *req.Latitude, *req.Longitude, actor); err != nil {
		respondError(w, r, err)
		return
	}

	WriteSuccess(w, r, models.Location{
		Label:     label,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
}
