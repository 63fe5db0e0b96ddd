// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// AuditLogger records authentication and account events with sanitized
// identifiers. Passwords and session ids never reach the log in full.
type AuditLogger struct {
	logger zerolog.Logger
}

// NewAuditLogger creates an audit logger over the global logger.
func NewAuditLogger() *AuditLogger {
	return NewAuditLoggerWithLogger(Logger())
}

// NewAuditLoggerWithLogger creates an audit logger over a specific logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewAuditLoggerWithLogger(logger zerolog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger.With().Str("component", "audit").Logger()}
}

// LoginSucceeded records a successful login.
func (a *AuditLogger) LoginSucceeded(username, ip string, remember bool) {
	a.logger.Info().
		Str("event", "login").
		Str("status", "success").
		Str("username", SanitizeUsername(username)).
		Str("ip", ip).
		Bool("remember", remember).
		Msg("User logged in")
}

// LoginFailed records a failed login; reason is a short machine readable tag.
func (a *AuditLogger) LoginFailed(username, ip, reason string) {
	a.logger.Warn().
		Str("event", "login").
		Str("status", "failed").
		Str("username", SanitizeUsername(username)).
		Str("ip", ip).
		Str("reason", reason).
		Msg("Login failed")
}

// LoggedOut records a logout.
func (a *AuditLogger) LoggedOut(username, sessionID string) {
	a.logger.Info().
		Str("event", "logout").
		Str("username", SanitizeUsername(username)).
		Str("session_id", SanitizeSessionID(sessionID)).
		Msg("User logged out")
}

// UserCreated records account creation; createdBy is empty for self registration.
func (a *AuditLogger) UserCreated(username, createdBy string, admin bool) {
	e := a.logger.Info().
		Str("event", "user_created").
		Str("username", SanitizeUsername(username)).
		Bool("admin", admin)
	if createdBy != "" {
		e = e.Str("created_by", SanitizeUsername(createdBy))
	}
	e.Msg("User created")
}

// PasswordChanged records a password change.
func (a *AuditLogger) PasswordChanged(username string) {
	a.logger.Info().
		Str("event", "password_changed").
		Str("username", SanitizeUsername(username)).
		Msg("Password changed")
}

// SanitizeSessionID keeps only the first 8 characters of a session id.
func SanitizeSessionID(sessionID string) string {
	if len(sessionID) <= 8 {
		return sessionID
	}
	return sessionID[:8] + "..."
}

// SanitizeUsername strips control characters and truncates to 64 runes so
// user input cannot forge log lines.
func SanitizeUsername(username string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, username)

	runes := []rune(cleaned)
	if len(runes) > 64 {
		return string(runes[:64]) + "..."
	}
	return cleaned
}
