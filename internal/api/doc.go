// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

/*
Package api implements the Occurlog HTTP API on the Chi router.

# Routes

	GET    /                               redirect to /home or /login
	GET    /health/live, /health/ready     probes
	GET    /metrics                        Prometheus
	POST   /api/v1/auth/login              sign in (?next=/relative/path)
	POST   /api/v1/auth/logout             sign out
	POST   /api/v1/auth/register           self registration, when enabled
	GET    /api/v1/auth/me                 current account
	GET    /api/v1/dashboard               every chart at once
	GET    /api/v1/stats/{weekly,monthly,yearly,streaks,heatmap}
	GET    /api/v1/occurrences             newest first, ?limit=&offset=
	POST   /api/v1/occurrences             log an occurrence
	DELETE /api/v1/occurrences/{time}      admin
	GET    /api/v1/occurrences/options     location and target suggestions
	GET    /api/v1/locations               sorted by label
	PUT    /api/v1/locations/{label}       admin, set coordinates
	GET    /api/v1/settings                per-user settings
	PUT    /api/v1/settings
	PUT    /api/v1/settings/password
	GET    /api/v1/users                   admin
	POST   /api/v1/users                   admin
	GET    /api/v1/ws                      live updates

# Responses

Every JSON response uses the APIResponse envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "VALIDATION_FAILED", "message": "..."}, "meta": {...}}

Request bodies are decoded with goccy/go-json, unknown fields are rejected,
and the result is validated with go-playground/validator. A locked account
is answered with 423 and a Retry-After header.
*/
package api
