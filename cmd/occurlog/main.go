// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

// Package main is the entry point for the occurlog command.
//
// Occurlog logs occurrences (when, where, what and a free-text note) and
// serves them as a dashboard: a weekly bar chart, monthly and yearly line
// charts, streaks and a heat-map of mapped locations.
//
// # Commands
//
//	occurlog serve                             run the HTTP server
//	occurlog user add <username> <email>       create an account (password read from stdin)
//	occurlog user list                         list accounts
//	occurlog location map <label> <lat> <lon>  set the coordinates of a location
//	occurlog seed import <file>                import locations and occurrences (YAML)
//	occurlog seed export <file>                export them ("-" for stdout)
//
// # Configuration
//
// Every command loads the same configuration via Koanf v2, highest priority
// first:
//   - Environment variables (DUCKDB_PATH, HTTP_PORT, AUTH_MODE, ...)
//   - Config file (CONFIG_PATH or config.yaml)
//   - Built-in defaults
//
// On first start `serve` creates the administrator named by ADMIN_USERNAME
// and ADMIN_PASSWORD and imports SEED_FILE when the database is empty.
//
// # Signal Handling
//
// `serve` shuts down gracefully on SIGINT and SIGTERM: the supervisor stops
// the HTTP server (10s timeout), the websocket hub and the event bus before
// the database is closed.
package main

import (
	"os"

	// Embedded zone data so TIMEZONE and per-user zones work in minimal images.
	_ "time/tzdata"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
