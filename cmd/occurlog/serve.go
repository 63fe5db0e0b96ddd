// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/occurlog/internal/api"
	"github.com/tomtom215/occurlog/internal/auth"
	"github.com/tomtom215/occurlog/internal/authz"
	"github.com/tomtom215/occurlog/internal/config"
	"github.com/tomtom215/occurlog/internal/database"
	"github.com/tomtom215/occurlog/internal/events"
	"github.com/tomtom215/occurlog/internal/logging"
	"github.com/tomtom215/occurlog/internal/metrics"
	"github.com/tomtom215/occurlog/internal/notify"
	"github.com/tomtom215/occurlog/internal/occurrence"
	"github.com/tomtom215/occurlog/internal/stats"
	"github.com/tomtom215/occurlog/internal/supervisor"
	"github.com/tomtom215/occurlog/internal/supervisor/services"
	ws "github.com/tomtom215/occurlog/internal/websocket"
)

const (
	shutdownTimeout = 10 * time.Second
	statsCacheTTL   = 5 * time.Minute
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

//nolint:gocyclo // sequential wiring of every component
func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("auth_mode", cfg.Security.AuthMode).
		Str("timezone", cfg.Server.Location().String()).
		Msg("Starting Occurlog with supervisor tree")
	metrics.SetAppInfo(version, runtime.Version())

	db, err := a.openDB()
	if err != nil {
		return err
	}
	defer closeDB(db)
	logging.Info().Msg("Database initialized successfully")

	if cfg.Database.SeedFile != "" {
		seeded, err := db.SeedIfEmpty(ctx, cfg.Database.SeedFile)
		if err != nil {
			return fmt.Errorf("failed to import seed file: %w", err)
		}
		if seeded {
			logging.Info().Str("file", cfg.Database.SeedFile).Msg("Seed file imported into empty database")
		}
	}

	bus, err := events.NewBus(events.DefaultConfig(), logging.NewWatermillLogger())
	if err != nil {
		return fmt.Errorf("failed to create event bus: %w", err)
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		return fmt.Errorf("failed to create authorization enforcer: %w", err)
	}
	defer enforcer.Close()

	lockout := auth.NewLockoutManager(auth.NewMemoryLockoutStore(), auth.LockoutConfigFromSecurity(&cfg.Security))
	accounts := auth.NewService(db, auth.ServiceConfig{
		AllowRegistration: cfg.Security.AllowRegistration,
		Lockout:           lockout,
		Publisher:         bus,
		Roles:             enforcer,
	})
	if err := bootstrapAccounts(ctx, accounts, &cfg.Security); err != nil {
		return err
	}

	sessions, closeSessions, err := auth.OpenSessionStore(auth.SessionStoreType(cfg.Security.SessionStore), cfg.Security.SessionStorePath)
	if err != nil {
		return fmt.Errorf("failed to create session store: %w", err)
	}
	defer func() {
		if err := closeSessions(); err != nil {
			logging.Error().Err(err).Msg("Error closing session store")
		}
	}()

	authn, err := newAuthMiddleware(cfg, sessions)
	if err != nil {
		return err
	}
	warnAboutSecurity(cfg)

	statsSvc := stats.NewService(db, stats.Config{
		CacheTTL:     statsCacheTTL,
		Location:     cfg.Server.Location(),
		MapLatitude:  cfg.Server.MapLatitude,
		MapLongitude: cfg.Server.MapLongitude,
		MapZoom:      cfg.Server.MapZoom,
	})
	defer statsSvc.Close()

	hub := ws.NewHub(db)

	// Subscriptions must be registered before the bus starts.
	statsSvc.Subscribe(bus)
	hub.Subscribe(bus)
	notify.NewClient(cfg.Notify).Subscribe(bus)
	logging.Info().Int("handlers", bus.Handlers()).Msg("Event handlers registered")

	handler := api.NewHandler(api.Deps{
		Store:       db,
		Accounts:    accounts,
		Sessions:    authn,
		Occurrences: occurrence.NewService(db, bus),
		Stats:       statsSvc,
		Hub:         hub,
		Config:      cfg,
	})
	router := api.NewRouter(handler, authn, authz.NewMiddleware(enforcer),
		api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security)))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  shutdownTimeout,
	})

	tree.Add(supervisor.DataLayer, services.NewCleanupService(auth.NewCleaner(sessions, lockout, lockout.CleanupInterval())))
	tree.Add(supervisor.MessagingLayer, services.NewEventBusService(bus))
	tree.Add(supervisor.MessagingLayer, services.NewWebSocketHubService(hub))
	tree.Add(supervisor.APILayer, services.NewHTTPServerService(server, shutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	return runTree(ctx, tree)
}

// bootstrapAccounts restores the in-memory role assignments and creates the
// configured administrator on an empty database.
func bootstrapAccounts(ctx context.Context, accounts *auth.Service, sec *config.SecurityConfig) error {
	synced, err := accounts.SyncRoles(ctx)
	if err != nil {
		return fmt.Errorf("failed to sync roles: %w", err)
	}
	logging.Info().Int("users", synced).Msg("Roles synchronized")

	created, err := accounts.EnsureAdmin(ctx, sec.AdminUsername, sec.AdminEmail, sec.AdminPassword)
	if err != nil {
		return err
	}
	if !created && synced == 0 {
		logging.Warn().Msg("No accounts exist. Set ADMIN_USERNAME and ADMIN_PASSWORD or run `occurlog user add --admin`")
	}
	return nil
}

func newAuthMiddleware(cfg *config.Config, sessions auth.SessionStore) (*auth.Middleware, error) {
	mode, err := auth.ParseAuthMode(cfg.Security.AuthMode)
	if err != nil {
		return nil, err
	}

	var jwtManager *auth.JWTManager
	if mode == auth.AuthModeJWT {
		jwtManager, err = auth.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.SessionTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize JWT manager: %w", err)
		}
	}

	authn, err := auth.NewMiddleware(auth.MiddlewareConfig{
		Mode:           mode,
		SessionTTL:     cfg.Security.SessionTimeout,
		RememberTTL:    cfg.Security.RememberDuration,
		SlidingSession: true,
		CookieSecure:   cfg.Security.CookieSecure,
	}, sessions, jwtManager)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize authentication: %w", err)
	}
	logging.Info().Str("mode", mode.String()).Msg("Authentication enabled")
	return authn, nil
}

func warnAboutSecurity(cfg *config.Config) {
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS is configured with a wildcard origin; set CORS_ORIGINS to specific origins in production")
	}
	if cfg.Security.AuthMode == "session" && cfg.Security.SessionStore == "memory" && !cfg.IsDevelopment() {
		logging.Warn().Msg("Sessions are kept in memory and are lost on restart; consider SESSION_STORE=badger")
	}
	if !cfg.Security.CookieSecure && cfg.IsProduction() {
		logging.Warn().Msg("COOKIE_SECURE is false in production; session cookies will be sent over plain HTTP")
	}
}

// runTree serves the supervisor tree until ctx is canceled and reports
// services that did not stop in time.
func runTree(ctx context.Context, tree *supervisor.Tree) error {
	logging.Info().Msg("Starting supervisor tree...")
	// The channel receives exactly one value and is never closed.
	err := <-tree.ServeBackground(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
	return err
}

// Compile-time check that the database satisfies the API store.
var _ api.Store = (*database.DB)(nil)
