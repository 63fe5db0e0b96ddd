// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package api

import (
	"net/http"

	"github.com/tomtom215/occurlog/internal/auth"
	"github.com/tomtom215/occurlog/internal/logging"
	"github.com/tomtom215/occurlog/internal/models"
	"github.com/tomtom215/occurlog/internal/occurrence"
)

// ListOccurrences returns one page of occurrences, newest first.
func (h *Handler) ListOccurrences(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	items, err := h.store.ListOccurrences(r.Context(), page.Limit, page.Offset)
	if err != nil {
		respondError(w, r, err)
		return
	}
	total, err := h.store.CountOccurrences(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if items == nil {
		items = []models.Occurrence{}
	}

	NewResponseWriter(w, r).SuccessWithPagination(items, &PaginationMeta{
		Total:   total,
		Count:   len(items),
		Offset:  page.Offset,
		Limit:   page.Limit,
		HasMore: page.Offset+len(items) < total,
	})
}

// CreateOccurrence logs a new occurrence for the caller.
func (h *Handler) CreateOccurrence(w http.ResponseWriter, r *http.Request) {
	var req CreateOccurrenceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	t, err := occurrence.ParseTime(req.Time)
	if err != nil {
		respondError(w, r, err)
		return
	}
	actor, err := h.currentUser(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	o, err := h.occurrences.Add(r.Context(), t, req.Location, req.Target, req.Context, actor)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(o)
}

// DeleteOccurrence removes the occurrence logged at the minute given in the
// path, written as 2006-01-02T15:04.
func (h *Handler) DeleteOccurrence(w http.ResponseWriter, r *http.Request) {
	raw, err := pathParam(r, "time")
	if err != nil {
		NewResponseWriter(w, r).BadRequest("invalid time in path")
		return
	}
	t, err := occurrence.ParseTime(raw)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.store.DeleteOccurrence(r.Context(), t); err != nil {
		respondError(w, r, err)
		return
	}
	h.stats.Invalidate()

	actor := ""
	if subject := auth.GetAuthSubject(r.Context()); subject != nil {
		actor = subject.Username
	}
	logging.CtxInfo(r.Context()).
		Time("time", t).
		Str("actor", actor).
		Msg("Occurrence deleted")

	NewResponseWriter(w, r).NoContent()
}

// OccurrenceOptions returns the known locations and targets for the form's
// suggestions.
func (h *Handler) OccurrenceOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.occurrences.Options(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	WriteSuccess(w, r, opts)
}
