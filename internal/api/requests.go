// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/occurlog/internal/models"
	"github.com/tomtom215/occurlog/internal/validation"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

// Pagination bounds for list endpoints.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 500
)

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,notblank,max=80"`
	Password string `json:"password" validate:"required,max=128"`
	Remember bool   `json:"remember"`
}

// RegisterRequest is the body of POST /api/v1/auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,notblank,max=80"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,max=128"`
}

// CreateUserRequest is the body of POST /api/v1/users.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,notblank,max=80"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,max=128"`
	Admin    bool   `json:"admin"`
}

// CreateOccurrenceRequest is the body of POST /api/v1/occurrences. Time uses
// the datetime-local layout, 2006-01-02T15:04.
type CreateOccurrenceRequest struct {
	Time     string `json:"time" validate:"required,formtime"`
	Location string `json:"location" validate:"required,notblank,max=80"`
	Target   string `json:"target" validate:"required,notblank,max=80"`
	Context  string `json:"context" validate:"max=2000"`
}

// MapLocationRequest is the body of PUT /api/v1/locations/{label}.
type MapLocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}

// SettingsRequest is the body of PUT /api/v1/settings. A zero map_zoom keeps
// the server's default view.
type SettingsRequest struct {
	Timezone            string  `json:"timezone" validate:"omitempty,timezone"`
	MapLatitude         float64 `json:"map_latitude" validate:"latitude"`
	MapLongitude        float64 `json:"map_longitude" validate:"longitude"`
	MapZoom             int     `json:"map_zoom" validate:"gte=0,lte=19"`
	NotifyNewOccurrence bool    `json:"notify_new_occurrence"`
}

// ToSettings converts the request into settings for userID.
func (s SettingsRequest) ToSettings(userID int64) models.UserSettings {
	return models.UserSettings{
		UserID:              userID,
		Timezone:            s.Timezone,
		MapLatitude:         s.MapLatitude,
		MapLongitude:        s.MapLongitude,
		MapZoom:             s.MapZoom,
		NotifyNewOccurrence: s.NotifyNewOccurrence,
	}
}

// ChangePasswordRequest is the body of PUT /api/v1/settings/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,max=128,nefield=CurrentPassword"`
}

// PageRequest holds the limit and offset query parameters.
type PageRequest struct {
	Limit  int `json:"limit" validate:"gte=1,lte=500"`
	Offset int `json:"offset" validate:"gte=0"`
}

var errEmptyBody = errors.New("request body is empty")

// decodeJSON reads a JSON body into dst and validates it. It writes the
// error response itself and reports whether the handler may continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			err = errEmptyBody
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			NewResponseWriter(w, r).Error(http.StatusRequestEntityTooLarge, ErrCodeBadRequest,
				fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
			return false
		}
		NewResponseWriter(w, r).BadRequest("Invalid JSON body: " + err.Error())
		return false
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		respondValidation(w, r, verr)
		return false
	}
	return true
}

// parsePage reads limit and offset from the query string.
func parsePage(w http.ResponseWriter, r *http.Request) (PageRequest, bool) {
	page := PageRequest{Limit: DefaultPageLimit}
	q := r.URL.Query()

	for name, dst := range map[string]*int{"limit": &page.Limit, "offset": &page.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			NewResponseWriter(w, r).BadRequest(name + " must be an integer")
			return page, false
		}
		*dst = n
	}

	if verr := validation.ValidateStruct(&page); verr != nil {
		respondValidation(w, r, verr)
		return page, false
	}
	return page, true
}
