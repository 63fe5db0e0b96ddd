// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

// Package logging provides centralized zerolog-based logging for Occurlog.
//
// A single global zerolog.Logger is configured at startup with Init and
// shared through package-level helpers:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("addr", addr).Msg("Server listening")
//	logging.Err(err).Msg("Failed to open database")
//
// Request-scoped logging uses the context helpers. The API middleware stores
// a request id, and the auth middleware adds the username:
//
//	logging.Ctx(ctx).Info().Str("location", label).Msg("Location mapped")
//
// Adapters route third-party logging into the same stream:
//   - NewSlogLogger for thejerf/sutureslog (supervisor tree)
//   - NewWatermillLogger for the watermill event bus
//
// AuditLogger writes sanitized authentication events (logins, logouts,
// user creation).
//
// Always terminate log chains with .Msg() or .Send(); an event without
// them is never written.
package logging
