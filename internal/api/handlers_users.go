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

// ListUsers returns every account. Admin only.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.ListUsers(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	WriteSuccess(w, r, users)
}

// CreateUser gives someone access. Admin only.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	createdBy := ""
	if subject := auth.GetAuthSubject(r.Context()); subject != nil {
		createdBy = subject.Username
	}
	user, err := h.accounts.CreateUser(r.Context(), auth.NewUser{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Admin:    req.Admin,
	}, createdBy, auth.SourceAdmin)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(user)
}
