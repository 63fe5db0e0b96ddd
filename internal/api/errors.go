// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/occurlog/internal/auth"
	"github.com/tomtom215/occurlog/internal/database"
	"github.com/tomtom215/occurlog/internal/logging"
	"github.com/tomtom215/occurlog/internal/occurrence"
	"github.com/tomtom215/occurlog/internal/validation"
)

// respondError maps a service error onto the response envelope. Errors that
// are not recognized are logged and answered with a generic 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w, r)

	var locked *auth.LockedError
	if errors.As(err, &locked) {
		rw.Locked(err.Error(), locked.Remaining)
		return
	}

	switch {
	case errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, auth.ErrWrongPassword):
		rw.Unauthorized(err.Error())
	case errors.Is(err, auth.ErrRegistrationDisabled):
		rw.Forbidden(err.Error())
	case errors.Is(err, auth.ErrUserExists),
		errors.Is(err, occurrence.ErrDuplicate),
		errors.Is(err, database.ErrDuplicate):
		rw.Conflict(err.Error())
	case errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidUser),
		errors.Is(err, occurrence.ErrInvalidTime),
		errors.Is(err, occurrence.ErrInvalidInput):
		rw.ValidationError(err.Error(), nil)
	case errors.Is(err, occurrence.ErrUnknownLocation),
		errors.Is(err, database.ErrNotFound):
		rw.NotFound(err.Error())
	default:
		logging.CtxErr(r.Context(), err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		rw.InternalError("An internal error occurred")
	}
}

// respondValidation writes the validator's field errors.
func respondValidation(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	NewResponseWriter(w, r).ValidationError(apiErr.Message, apiErr.Details)
}
