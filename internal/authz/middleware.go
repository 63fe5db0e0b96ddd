// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package authz

import (
	"net/http"

	"github.com/tomtom215/occurlog/internal/auth"
	"github.com/tomtom215/occurlog/internal/logging"
)

// Middleware provides authorization middleware using Casbin.
type Middleware struct {
	enforcer  *Enforcer
	forbidden http.Handler
	failed    http.Handler
}

// NewMiddleware creates a new authorization middleware.
func NewMiddleware(enforcer *Enforcer) *Middleware {
	return &Middleware{
		enforcer: enforcer,
		forbidden: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
		}),
		failed: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}),
	}
}

// SetResponders replaces the 403 and 500 responses.
func (m *Middleware) SetResponders(forbidden, failed http.Handler) {
	if forbidden != nil {
		m.forbidden = forbidden
	}
	if failed != nil {
		m.failed = failed
	}
}

// Authorize lets the request through only when the authenticated subject
// may perform action on object. Requests without a subject are forbidden;
// put auth.Middleware.RequireAuth in front to answer 401 instead.
func (m *Middleware) Authorize(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := auth.GetAuthSubject(r.Context())
			if subject == nil {
				m.forbidden.ServeHTTP(w, r)
				return
			}

			allowed, err := m.enforcer.EnforceWithRole(subject.Username, subject.Role, object, action)
			if err != nil {
				logging.CtxErr(r.Context(), err).Msg("Authorization error")
				m.failed.ServeHTTP(w, r)
				return
			}
			if !allowed {
				logging.Ctx(r.Context()).Debug().
					Str("object", object).
					Str("action", action).
					Msg("Authorization denied")
				m.forbidden.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
