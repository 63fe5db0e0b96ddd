// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names an explicit config file.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are tried in order when CONFIG_PATH is unset or names
// a missing file.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/occurlog/config.yaml",
	"/etc/occurlog/config.yml",
}

func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "/data/occurlog.duckdb", MaxMemory: "512MB"},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         3857,
			Timeout:      30 * time.Second,
			Environment:  "development",
			Timezone:     "Local",
			MapLatitude:  51.05,
			MapLongitude: 3.73,
			MapZoom:      6,
		},
		Security: SecurityConfig{
			AuthMode:         "session",
			SessionTimeout:   24 * time.Hour,
			RememberDuration: 30 * 24 * time.Hour,
			SessionStore:     "memory",
			SessionStorePath: "/data/sessions",
			RateLimitReqs:    100,
			RateLimitWindow:  time.Minute,
			CORSOrigins:      []string{},
			MaxLoginAttempts: 5,
			LockoutDuration:  15 * time.Minute,
		},
		Notify:  NotifyConfig{RateLimit: time.Second, Timeout: 10 * time.Second},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// loadFrom merges, lowest priority first, the defaults, the YAML file at
// path (skipped when empty) and the mapped environment variables, then
// validates the result.
func loadFrom(path string) (*Config, error) {
	type layer struct {
		name     string
		provider koanf.Provider
		parser   koanf.Parser
	}
	layers := []layer{{"defaults", structs.Provider(defaultConfig(), "koanf"), nil}}
	if path != "" {
		layers = append(layers, layer{"config file " + path, file.Provider(path), yaml.Parser()})
	}
	layers = append(layers, layer{"environment variables", env.Provider("", ".", envKey), nil})

	k := koanf.New(".")
	for _, l := range layers {
		if err := k.Load(l.provider, l.parser); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", l.name, err)
		}
	}

	// CORS_ORIGINS arrives as one comma separated string.
	if raw, ok := k.Get("security.cors_origins").(string); ok {
		if err := k.Set("security.cors_origins", splitList(raw)); err != nil {
			return nil, fmt.Errorf("failed to set security.cors_origins: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func splitList(raw string) []string {
	out := []string{}
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func findConfigFile() string {
	candidates := DefaultConfigPaths
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		candidates = append([]string{p}, candidates...)
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envVars maps every environment variable occurlog reads to its config
// key. DB_PATH and SECRET_KEY are the names older deployments used.
var envVars = map[string]string{
	"DB_PATH":           "database.path",
	"DUCKDB_PATH":       "database.path",
	"DUCKDB_MAX_MEMORY": "database.max_memory",
	"DUCKDB_THREADS":    "database.threads",
	"SEED_FILE":         "database.seed_file",

	"HTTP_HOST":     "server.host",
	"HTTP_PORT":     "server.port",
	"HTTP_TIMEOUT":  "server.timeout",
	"ENVIRONMENT":   "server.environment",
	"TIMEZONE":      "server.timezone",
	"MAP_LATITUDE":  "server.map_latitude",
	"MAP_LONGITUDE": "server.map_longitude",
	"MAP_ZOOM":      "server.map_zoom",

	"AUTH_MODE":           "security.auth_mode",
	"JWT_SECRET":          "security.jwt_secret",
	"SECRET_KEY":          "security.jwt_secret",
	"SESSION_TIMEOUT":     "security.session_timeout",
	"REMEMBER_DURATION":   "security.remember_duration",
	"SESSION_STORE":       "security.session_store",
	"SESSION_STORE_PATH":  "security.session_store_path",
	"COOKIE_SECURE":       "security.cookie_secure",
	"ALLOW_REGISTRATION":  "security.allow_registration",
	"ADMIN_USERNAME":      "security.admin_username",
	"ADMIN_PASSWORD":      "security.admin_password",
	"ADMIN_EMAIL":         "security.admin_email",
	"RATE_LIMIT_REQUESTS": "security.rate_limit_reqs",
	"RATE_LIMIT_WINDOW":   "security.rate_limit_window",
	"DISABLE_RATE_LIMIT":  "security.rate_limit_disabled",
	"CORS_ORIGINS":        "security.cors_origins",
	"MAX_LOGIN_ATTEMPTS":  "security.max_login_attempts",
	"LOCKOUT_DURATION":    "security.lockout_duration",

	"NTFY_ENABLED":    "notify.enabled",
	"NTFY_ENDPOINT":   "notify.ntfy_endpoint",
	"NTFY_AUTH":       "notify.ntfy_auth",
	"NTFY_RATE_LIMIT": "notify.rate_limit",
	"NTFY_TIMEOUT":    "notify.timeout",

	"LOG_LEVEL":  "logging.level",
	"LOG_FORMAT": "logging.format",
	"LOG_CALLER": "logging.caller",
}

// envKey translates an environment variable name to its config key. Names
// not in envVars return "", which koanf skips.
func envKey(name string) string {
	return envVars[strings.ToUpper(name)]
}
