// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "HTTP_PORT"},
		{"bad timezone", func(c *Config) { c.Server.Timezone = "Mars/Olympus" }, "TIMEZONE"},
		{"latitude out of range", func(c *Config) { c.Server.MapLatitude = 91 }, "MAP_LATITUDE"},
		{"longitude out of range", func(c *Config) { c.Server.MapLongitude = -181 }, "MAP_LONGITUDE"},
		{"zoom out of range", func(c *Config) { c.Server.MapZoom = 0 }, "MAP_ZOOM"},
		{"unknown auth mode", func(c *Config) { c.Security.AuthMode = "basic" }, "AUTH_MODE"},
		{"jwt without secret", func(c *Config) { c.Security.AuthMode = "jwt" }, "JWT_SECRET is required"},
		{"jwt short secret", func(c *Config) {
			c.Security.AuthMode = "jwt"
			c.Security.JWTSecret = "short"
		}, "at least 32"},
		{"jwt placeholder secret", func(c *Config) {
			c.Security.AuthMode = "jwt"
			c.Security.JWTSecret = "CHANGEME-CHANGEME-CHANGEME-CHANGEME"
		}, "placeholder"},
		{"remember shorter than session", func(c *Config) {
			c.Security.RememberDuration = time.Hour
		}, "REMEMBER_DURATION"},
		{"unknown session store", func(c *Config) { c.Security.SessionStore = "redis" }, "SESSION_STORE"},
		{"badger without path", func(c *Config) {
			c.Security.SessionStore = "badger"
			c.Security.SessionStorePath = ""
		}, "SESSION_STORE_PATH"},
		{"wildcard cors in production", func(c *Config) {
			c.Server.Environment = "production"
			c.Security.CORSOrigins = []string{"*"}
		}, "CORS_ORIGINS"},
		{"rate limit too low", func(c *Config) { c.Security.RateLimitReqs = 0 }, "RATE_LIMIT_REQUESTS"},
		{"rate limit disabled skips bounds", func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitReqs = 0
		}, ""},
		{"rate window too long", func(c *Config) { c.Security.RateLimitWindow = 2 * time.Hour }, "RATE_LIMIT_WINDOW"},
		{"no login attempts", func(c *Config) { c.Security.MaxLoginAttempts = 0 }, "MAX_LOGIN_ATTEMPTS"},
		{"admin username without password", func(c *Config) { c.Security.AdminUsername = "admin" }, "ADMIN_PASSWORD is required"},
		{"admin weak password", func(c *Config) {
			c.Security.AdminUsername = "admin"
			c.Security.AdminPassword = "short1"
		}, "ADMIN_PASSWORD"},
		{"admin strong password", func(c *Config) {
			c.Security.AdminUsername = "admin"
			c.Security.AdminPassword = "Tr0ub4dor&3-horse"
		}, ""},
		{"ntfy without endpoint", func(c *Config) { c.Notify.Enabled = true }, "NTFY_ENDPOINT is required"},
		{"ntfy without topic", func(c *Config) {
			c.Notify.Enabled = true
			c.Notify.Endpoint = "https://ntfy.sh/"
		}, "topic path"},
		{"ntfy bad scheme", func(c *Config) {
			c.Notify.Enabled = true
			c.Notify.Endpoint = "ftp://ntfy.sh/topic"
		}, "scheme"},
		{"ntfy ok", func(c *Config) {
			c.Notify.Enabled = true
			c.Notify.Endpoint = "https://ntfy.sh/occurlog"
		}, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestEnvironmentHelpers(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if !cfg.IsDevelopment() || cfg.IsProduction() {
		t.Error("default environment should be development")
	}

	cfg.Server.Environment = "PROD"
	if !cfg.IsProduction() {
		t.Error("PROD should count as production")
	}
}

func TestServerLocation(t *testing.T) {
	t.Parallel()

	if loc := (ServerConfig{Timezone: "Local"}).Location(); loc != time.Local {
		t.Errorf("Local timezone should map to time.Local, got %v", loc)
	}
	if loc := (ServerConfig{}).Location(); loc != time.Local {
		t.Errorf("empty timezone should map to time.Local, got %v", loc)
	}
	if loc := (ServerConfig{Timezone: "UTC"}).Location(); loc.String() != "UTC" {
		t.Errorf("expected UTC, got %v", loc)
	}
}
