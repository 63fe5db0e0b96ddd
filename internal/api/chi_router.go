// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/occurlog/internal/auth"
	"github.com/tomtom215/occurlog/internal/authz"
	"github.com/tomtom215/occurlog/internal/middleware"
)

// Router wires the handlers onto chi together with authentication,
// authorization and the shared middleware.
type Router struct {
	handler       *Handler
	authn         *auth.Middleware
	authz         *authz.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil chiMW uses DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, authn *auth.Middleware, authzMW *authz.Middleware, chiMW *ChiMiddleware) *Router {
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		authn:         authn,
		authz:         authzMW,
		chiMiddleware: chiMW,
	}
}

// SetupChi builds the HTTP handler. Access rules per route:
//
//	/, /health/*, /metrics, /api/v1/auth/{login,register}   anyone
//	/api/v1/auth/{logout,me}                                any signed-in user
//	everything else under /api/v1                           casbin policy
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	allow := router.authz.Authorize

	router.authn.SetUnauthorizedHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Unauthorized("authentication required")
	}))
	router.authz.SetResponders(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			NewResponseWriter(w, r).Forbidden("insufficient permissions")
		}),
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			NewResponseWriter(w, r).InternalError("authorization check failed")
		}),
	)

	r := chi.NewRouter()

	// Order matters: ids first so every later log line carries them,
	// Authenticate last so handlers and authz see the subject.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.SecurityHeaders)
	r.Use(router.chiMiddleware.CORS())
	r.Use(router.authn.Authenticate)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("no route for " + r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.Get("/", h.Index)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.NoStore)

		r.Route("/auth", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitAuth())
			r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", h.Login)
			r.Post("/register", h.Register)

			r.Group(func(r chi.Router) {
				r.Use(router.authn.RequireAuth)
				r.Post("/logout", h.Logout)
				r.Get("/me", h.Me)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(router.authn.RequireAuth)

			r.With(allow(authz.ObjectStats, authz.ActionRead)).Get("/dashboard", h.Dashboard)
			r.Route("/stats", func(r chi.Router) {
				r.Use(allow(authz.ObjectStats, authz.ActionRead))
				r.Get("/weekly", h.StatsWeekly)
				r.Get("/monthly", h.StatsMonthly)
				r.Get("/yearly", h.StatsYearly)
				r.Get("/streaks", h.StatsStreaks)
				r.Get("/heatmap", h.StatsHeatMap)
			})

			r.Route("/occurrences", func(r chi.Router) {
				r.With(allow(authz.ObjectOccurrences, authz.ActionRead)).Get("/", h.ListOccurrences)
				r.With(allow(authz.ObjectOccurrences, authz.ActionRead)).Get("/options", h.OccurrenceOptions)
				r.With(allow(authz.ObjectOccurrences, authz.ActionWrite)).Post("/", h.CreateOccurrence)
				r.With(allow(authz.ObjectOccurrences, authz.ActionDelete)).Delete("/{time}", h.DeleteOccurrence)
			})

			r.Route("/locations", func(r chi.Router) {
				r.With(allow(authz.ObjectLocations, authz.ActionRead)).Get("/", h.ListLocations)
				r.With(allow(authz.ObjectLocations, authz.ActionWrite)).Put("/{label}", h.MapLocation)
			})

			r.Route("/settings", func(r chi.Router) {
				r.With(allow(authz.ObjectSettings, authz.ActionRead)).Get("/", h.GetSettings)
				r.With(allow(authz.ObjectSettings, authz.ActionWrite)).Put("/", h.UpdateSettings)
				r.With(allow(authz.ObjectSettings, authz.ActionWrite)).Put("/password", h.ChangePassword)
			})

			r.Route("/users", func(r chi.Router) {
				r.With(allow(authz.ObjectUsers, authz.ActionRead)).Get("/", h.ListUsers)
				r.With(allow(authz.ObjectUsers, authz.ActionWrite)).Post("/", h.CreateUser)
			})

			r.With(
				router.chiMiddleware.RateLimitWebSocket(),
				allow(authz.ObjectStats, authz.ActionRead),
			).Get("/ws", h.WebSocket)
		})
	})

	return r
}
