// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package models

import "time"

// Role constants. These align with the casbin policy in internal/authz.
const (
	// RoleUser may log occurrences and view the dashboard.
	RoleUser = "user"

	// RoleAdmin additionally manages users and maps locations.
	RoleAdmin = "admin"
)

// User is an application account. PasswordHash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Admin        bool      `json:"admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Role returns the casbin role for the user.
func (u *User) Role() string {
	if u.Admin {
		return RoleAdmin
	}
	return RoleUser
}

// UserSettings holds per-user dashboard preferences. Zero values mean "use
// the server default"; see WithDefaults.
type UserSettings struct {
	UserID              int64     `json:"user_id"`
	Timezone            string    `json:"timezone"`
	MapLatitude         float64   `json:"map_latitude"`
	MapLongitude        float64   `json:"map_longitude"`
	MapZoom             int       `json:"map_zoom"`
	NotifyNewOccurrence bool      `json:"notify_new_occurrence"`
	UpdatedAt           time.Time `json:"updated_at,omitempty"`
}

// WithDefaults fills unset fields from the server defaults.
func (s UserSettings) WithDefaults(timezone string, lat, lon float64, zoom int) UserSettings {
	if s.Timezone == "" {
		s.Timezone = timezone
	}
	if s.MapZoom == 0 {
		s.MapLatitude = lat
		s.MapLongitude = lon
		s.MapZoom = zoom
	}
	return s
}

// Location resolves the settings timezone, falling back to fallback when the
// name is empty or unknown.
func (s UserSettings) Location(fallback *time.Location) *time.Location {
	if s.Timezone == "" {
		return fallback
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return fallback
	}
	return loc
}
