// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package api

import (
	"context"
	"net/http"

	"github.com/tomtom215/occurlog/internal/models"
)

// Dashboard returns every chart in one response, computed for the caller's
// timezone and map view.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.serveStats(w, r, func(ctx context.Context, s models.UserSettings) (interface{}, error) {
		return h.stats.Dashboard(ctx, s)
	})
}

// StatsWeekly returns the bar chart of the last seven days.
func (h *Handler) StatsWeekly(w http.ResponseWriter, r *http.Request) {
	h.serveStats(w, r, func(ctx context.Context, s models.UserSettings) (interface{}, error) {
		return h.stats.Weekly(ctx, s)
	})
}

// StatsMonthly returns the daily line since the same day last month.
func (h *Handler) StatsMonthly(w http.ResponseWriter, r *http.Request) {
	h.serveStats(w, r, func(ctx context.Context, s models.UserSettings) (interface{}, error) {
		return h.stats.Monthly(ctx, s)
	})
}

// StatsYearly returns the monthly line of the last twelve months.
func (h *Handler) StatsYearly(w http.ResponseWriter, r *http.Request) {
	h.serveStats(w, r, func(ctx context.Context, s models.UserSettings) (interface{}, error) {
		return h.stats.Yearly(ctx, s)
	})
}

// StatsStreaks returns the current and longest streaks.
func (h *Handler) StatsStreaks(w http.ResponseWriter, r *http.Request) {
	h.serveStats(w, r, func(ctx context.Context, s models.UserSettings) (interface{}, error) {
		return h.stats.StreakSummary(ctx, s)
	})
}

// StatsHeatMap returns the heat-map points and view.
func (h *Handler) StatsHeatMap(w http.ResponseWriter, r *http.Request) {
	h.serveStats(w, r, func(ctx context.Context, s models.UserSettings) (interface{}, error) {
		return h.stats.HeatMap(ctx, s)
	})
}

func (h *Handler) serveStats(w http.ResponseWriter, r *http.Request, fn func(context.Context, models.UserSettings) (interface{}, error)) {
	settings, err := h.settingsFor(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	data, err := fn(r.Context(), settings)
	if err != nil {
		respondError(w, r, err)
		return
	}
	WriteSuccess(w, r, data)
}
