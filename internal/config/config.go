// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting via environment variables
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	db, err := database.New(&cfg.Database)
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Notify   NotifyConfig   `koanf:"notify"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`   // Number of DuckDB threads (0 = use NumCPU)
	SeedFile  string `koanf:"seed_file"` // YAML seed imported when the database is empty
}

// ServerConfig holds HTTP server and dashboard defaults.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // "development", "staging", "production"

	// Timezone is used to decide which calendar day "today" is when building
	// charts. Users can override it in their settings.
	Timezone string `koanf:"timezone"`

	// Default heat-map view.
	MapLatitude  float64 `koanf:"map_latitude"`
	MapLongitude float64 `koanf:"map_longitude"`
	MapZoom      int     `koanf:"map_zoom"`
}

// SecurityConfig holds authentication and authorization settings
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"` // session or jwt
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	RememberDuration  time.Duration `koanf:"remember_duration"`
	SessionStore      string        `koanf:"session_store"` // memory or badger
	SessionStorePath  string        `koanf:"session_store_path"`
	CookieSecure      bool          `koanf:"cookie_secure"`
	AllowRegistration bool          `koanf:"allow_registration"`

	// Bootstrap administrator, created on startup when the users table is empty.
	AdminUsername string `koanf:"admin_username"`
	AdminPassword string `koanf:"admin_password"`
	AdminEmail    string `koanf:"admin_email"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`

	MaxLoginAttempts int           `koanf:"max_login_attempts"`
	LockoutDuration  time.Duration `koanf:"lockout_duration"`
}

// NotifyConfig configures push notifications through an ntfy server.
//
// Environment Variables:
//   - NTFY_ENABLED: Enable notifications (default: false)
//   - NTFY_ENDPOINT: Topic URL, e.g. https://ntfy.sh/my-topic
//   - NTFY_AUTH: Value of the Authorization header sent with every message
//   - NTFY_RATE_LIMIT: Minimum interval between two messages (default: 1s)
//   - NTFY_TIMEOUT: HTTP timeout (default: 10s)
type NotifyConfig struct {
	Enabled   bool          `koanf:"enabled"`
	Endpoint  string        `koanf:"ntfy_endpoint"`
	Auth      string        `koanf:"ntfy_auth"`
	RateLimit time.Duration `koanf:"rate_limit"`
	Timeout   time.Duration `koanf:"timeout"`
}

// LoggingConfig holds logging configuration.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// Load reads configuration from defaults, the first config file found and
// the environment.
func Load() (*Config, error) {
	return loadFrom(findConfigFile())
}

// Location returns the configured dashboard timezone, falling back to the
// process local zone. Validate guarantees the name is loadable.
func (s ServerConfig) Location() *time.Location {
	if s.Timezone == "" || s.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
