// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/occurlog/internal/logging"
)

// SlowRequestThreshold promotes access log lines to warn level.
var SlowRequestThreshold = 2 * time.Second

// AccessLog writes one structured line per request through the request's
// logging context. Server errors log at error level, slow requests at warn.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r)
		duration := time.Since(start)

		event := accessLogEvent(r, rec.status, duration)
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route", routePattern(r)).
			Int("status", rec.status).
			Int("bytes", rec.bytes).
			Dur("duration", duration).
			Str("remote_addr", r.RemoteAddr).
			Msg("request")
	})
}

func accessLogEvent(r *http.Request, status int, duration time.Duration) *zerolog.Event {
	logger := logging.Ctx(r.Context())
	switch {
	case status >= http.StatusInternalServerError:
		return logger.Error()
	case duration >= SlowRequestThreshold:
		return logger.Warn()
	default:
		return logger.Debug()
	}
}
