// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/occurlog/internal/auth"
	"github.com/tomtom215/occurlog/internal/authz"
	"github.com/tomtom215/occurlog/internal/config"
	"github.com/tomtom215/occurlog/internal/database"
	"github.com/tomtom215/occurlog/internal/logging"
	"github.com/tomtom215/occurlog/internal/models"
	"github.com/tomtom215/occurlog/internal/occurrence"
	"github.com/tomtom215/occurlog/internal/stats"
	ws "github.com/tomtom215/occurlog/internal/websocket"
)

const (
	userPassword  = "tulips4ever9"
	adminPassword = "Gr33n-Lantern!x"
)

func TestMain(m *testing.M) {
	logging.Init(logging.Config{Level: "error", Format: "json", Output: io.Discard})
	m.Run()
}

var testDBSemaphore = make(chan struct{}, 2)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "256MB", Threads: 1})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type envOptions struct {
	allowRegistration bool
	rateLimit         bool
	lockout           *auth.LockoutManager
	hub               *ws.Hub
}

// testEnv is a fully wired API over an in-memory database with one admin
// ("admin") and one regular user ("carol").
type testEnv struct {
	t        *testing.T
	db       *database.DB
	accounts *auth.Service
	stats    *stats.Service
	handler  http.Handler
	admin    *models.User
	carol    *models.User
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	cfg := &config.Config{
		Server: config.ServerConfig{
			Timezone:     "UTC",
			MapLatitude:  51.05,
			MapLongitude: 3.73,
			MapZoom:      6,
		},
		Security: config.SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: !opts.rateLimit,
		},
	}

	enforcer, err := authz.NewEnforcer(&authz.EnforcerConfig{CacheTTL: time.Minute})
	if err != nil {
		t.Fatalf("NewEnforcer failed: %v", err)
	}
	t.Cleanup(enforcer.Close)

	accounts := auth.NewService(db, auth.ServiceConfig{
		AllowRegistration: opts.allowRegistration,
		Lockout:           opts.lockout,
		Roles:             enforcer,
		Cost:              bcrypt.MinCost,
	})
	authn, err := auth.NewMiddleware(auth.MiddlewareConfig{Mode: auth.AuthModeSession}, auth.NewMemorySessionStore(), nil)
	if err != nil {
		t.Fatalf("NewMiddleware failed: %v", err)
	}

	statsSvc := stats.NewService(db, stats.Config{CacheTTL: time.Minute, Location: time.UTC})
	t.Cleanup(statsSvc.Close)

	h := NewHandler(Deps{
		Store:       db,
		Accounts:    accounts,
		Sessions:    authn,
		Occurrences: occurrence.NewService(db, nil),
		Stats:       statsSvc,
		Hub:         opts.hub,
		Config:      cfg,
	})
	router := NewRouter(h, authn, authz.NewMiddleware(enforcer), NewChiMiddleware(ChiMiddlewareConfigFromSecurity(&cfg.Security)))

	env := &testEnv{
		t:        t,
		db:       db,
		accounts: accounts,
		stats:    statsSvc,
		handler:  router.SetupChi(),
	}
	ctx := context.Background()
	env.admin, err = accounts.CreateUser(ctx, auth.NewUser{Username: "admin", Email: "admin@example.com", Password: adminPassword, Admin: true}, "", auth.SourceBootstrap)
	if err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}
	env.carol, err = accounts.CreateUser(ctx, auth.NewUser{Username: "carol", Email: "carol@example.com", Password: userPassword}, "admin", auth.SourceAdmin)
	if err != nil {
		t.Fatalf("failed to create carol: %v", err)
	}
	return env
}

// do sends a request through the router. body may be empty.
func (e *testEnv) do(method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// login signs in and returns the session cookie.
func (e *testEnv) login(username, password string) *http.Cookie {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/v1/auth/login",
		`{"username":"`+username+`","password":"`+password+`"}`, nil)
	if rec.Code != http.StatusOK {
		e.t.Fatalf("login as %s: status %d, body %s", username, rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.DefaultCookieName {
			return c
		}
	}
	e.t.Fatalf("login as %s: no session cookie", username)
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid envelope %q: %v", rec.Body.String(), err)
	}
	return env
}

// expectError checks the status and error code of a failed response.
func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env.Success || env.Error == nil || env.Error.Code != code {
		t.Fatalf("error = %+v, want code %s", env.Error, code)
	}
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatalf("expected success, got %+v", env.Error)
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("failed to decode data %s: %v", env.Data, err)
	}
}
