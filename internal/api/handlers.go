// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/occurlog/internal/auth"
	"github.com/tomtom215/occurlog/internal/config"
	"github.com/tomtom215/occurlog/internal/logging"
	"github.com/tomtom215/occurlog/internal/models"
	"github.com/tomtom215/occurlog/internal/occurrence"
	"github.com/tomtom215/occurlog/internal/stats"
	ws "github.com/tomtom215/occurlog/internal/websocket"
)

// Store is the part of the database the handlers read directly.
type Store interface {
	Ping(ctx context.Context) error
	ListOccurrences(ctx context.Context, limit, offset int) ([]models.Occurrence, error)
	CountOccurrences(ctx context.Context) (int, error)
	DeleteOccurrence(ctx context.Context, t time.Time) error
	ListLocations(ctx context.Context) ([]models.Location, error)
	GetUserSettings(ctx context.Context, userID int64) (models.UserSettings, error)
	UpsertUserSettings(ctx context.Context, s *models.UserSettings) error
}

// Deps are the collaborators of Handler.
type Deps struct {
	Store       Store
	Accounts    *auth.Service
	Sessions    *auth.Middleware
	Occurrences *occurrence.Service
	Stats       *stats.Service
	Hub         *ws.Hub
	Config      *config.Config
}

// Handler implements the HTTP endpoints.
type Handler struct {
	store       Store
	accounts    *auth.Service
	sessions    *auth.Middleware
	occurrences *occurrence.Service
	stats       *stats.Service
	hub         *ws.Hub
	config      *config.Config
	upgrader    websocket.Upgrader
	startTime   time.Time
}

// NewHandler creates the handler set.
func NewHandler(deps Deps) *Handler {
	h := &Handler{
		store:       deps.Store,
		accounts:    deps.Accounts,
		sessions:    deps.Sessions,
		occurrences: deps.Occurrences,
		stats:       deps.Stats,
		hub:         deps.Hub,
		config:      deps.Config,
		startTime:   time.Now(),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin:      h.checkWebSocketOrigin,
	}
	return h
}

// checkWebSocketOrigin accepts same-host origins and the configured CORS
// origins. Requests without an Origin header are refused since browsers
// always send one.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.CtxWarn(r.Context()).Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	if h.config != nil {
		for _, allowed := range h.config.Security.CORSOrigins {
			if allowed == "*" || strings.EqualFold(allowed, origin) {
				return true
			}
		}
	}

	logging.CtxWarn(r.Context()).Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// settingsFor loads the settings of the authenticated user. Anonymous
// callers get the server defaults.
func (h *Handler) settingsFor(ctx context.Context) (models.UserSettings, error) {
	subject := auth.GetAuthSubject(ctx)
	if subject == nil {
		return models.UserSettings{}, nil
	}
	return h.store.GetUserSettings(ctx, subject.UserID)
}

// currentUser resolves the authenticated subject to its account.
func (h *Handler) currentUser(ctx context.Context) (*models.User, error) {
	subject := auth.GetAuthSubject(ctx)
	if subject == nil {
		return nil, auth.ErrUserNotFound
	}
	return h.accounts.GetUser(ctx, subject.UserID)
}

// sanitizeLogValue strips control characters and truncates v for logging.
func sanitizeLogValue(v string) string {
	const maxLen = 200
	v = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, v)
	if len(v) > maxLen {
		v = v[:maxLen]
	}
	return v
}

// pathParam returns the decoded URL parameter key. chi matches against
// r.URL.RawPath when it is set, so the parameter is still escaped then;
// otherwise it already comes from the decoded r.URL.Path.
func pathParam(r *http.Request, key string) (string, error) {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v, nil
	}
	return url.PathUnescape(v)
}
