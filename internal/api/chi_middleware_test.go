// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	dto "github.com/prometheus/client_model/go"

	"github.com/tomtom215/occurlog/internal/config"
	"github.com/tomtom215/occurlog/internal/metrics"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func rateLimitHits(t *testing.T, endpoint string) float64 {
	t.Helper()
	var m dto.Metric
	if err := metrics.APIRateLimitHits.WithLabelValues(endpoint).Write(&m); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestRateLimitCustom(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		disabled bool
		limit    RateLimitConfig
		allowed  int
	}{
		{"enforced", false, RateLimitConfig{Requests: 2, Window: time.Minute}, 2},
		{"disabled", true, RateLimitConfig{Requests: 2, Window: time.Minute}, 5},
		{"zero-budget", false, RateLimitConfig{}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultChiMiddlewareConfig()
			cfg.RateLimitDisabled = tt.disabled
			mw := NewChiMiddleware(cfg)

			pattern := "/limited/" + tt.name
			r := chi.NewRouter()
			r.With(mw.RateLimitCustom(tt.limit)).Get(pattern, okHandler)
			before := rateLimitHits(t, pattern)

			passed := 0
			for i := 0; i < 5; i++ {
				req := httptest.NewRequest(http.MethodGet, pattern, nil)
				req.RemoteAddr = "192.0.2.10:4321"
				rec := httptest.NewRecorder()
				r.ServeHTTP(rec, req)
				switch rec.Code {
				case http.StatusOK:
					passed++
				case http.StatusTooManyRequests:
					expectError(t, rec, http.StatusTooManyRequests, ErrCodeTooManyRequests)
				default:
					t.Fatalf("unexpected status %d", rec.Code)
				}
			}
			if passed != tt.allowed {
				t.Errorf("passed %d requests, want %d", passed, tt.allowed)
			}
			if got := rateLimitHits(t, pattern) - before; got != float64(5-tt.allowed) {
				t.Errorf("rate limit hits = %v, want %d", got, 5-tt.allowed)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	t.Parallel()
	mw := NewChiMiddleware(ChiMiddlewareConfigFromSecurity(&config.SecurityConfig{
		CORSOrigins:     []string{"https://dash.example.com"},
		RateLimitReqs:   10,
		RateLimitWindow: time.Minute,
	}))
	handler := mw.CORS()(http.HandlerFunc(okHandler))

	tests := []struct {
		origin string
		want   string
	}{
		{"https://dash.example.com", "https://dash.example.com"},
		{"https://evil.example", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/occurrences", nil)
		req.Header.Set("Origin", tt.origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
			t.Errorf("origin %s: Access-Control-Allow-Origin = %q, want %q", tt.origin, got, tt.want)
		}
	}
}

func TestResponseWriter_Locked(t *testing.T) {
	t.Parallel()

	tests := []struct {
		retryAfter time.Duration
		want       string
	}{
		{1200 * time.Millisecond, "2"},
		{time.Minute, "60"},
		{0, ""},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		NewResponseWriter(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)).
			Locked("account locked", tt.retryAfter)

		expectError(t, rec, http.StatusLocked, ErrCodeLocked)
		if got := rec.Header().Get("Retry-After"); got != tt.want {
			t.Errorf("Retry-After for %v = %q, want %q", tt.retryAfter, got, tt.want)
		}
	}
}
