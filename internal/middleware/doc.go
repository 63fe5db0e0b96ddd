// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

/*
Package middleware provides the HTTP middleware shared by every route.

All middleware uses the func(http.Handler) http.Handler shape so it can be
mounted on a chi router with Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)          // request and correlation IDs
	r.Use(middleware.AccessLog)          // one structured line per request
	r.Use(middleware.PrometheusMetrics)  // api_requests_total and friends
	r.Use(middleware.SecurityHeaders)    // nosniff, frame denial, HSTS

Request IDs:

RequestID honors an inbound X-Request-ID header from a reverse proxy and
generates a UUID otherwise. The ID is echoed in the response and stored in
the logging context so that logging.Ctx(ctx) lines carry request_id and
correlation_id fields.

Metrics:

PrometheusMetrics labels requests with the chi route pattern
("/api/v1/users/{id}") rather than the raw path, which keeps label
cardinality bounded.
*/
package middleware
