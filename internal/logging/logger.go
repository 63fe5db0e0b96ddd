// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Config selects level, encoding and destination of the process logger.
type Config struct {
	Level     string // trace, debug, info, warn, error, fatal, panic
	Format    string // json or console
	Caller    bool
	Timestamp bool
	Output    io.Writer // os.Stderr when nil
}

// DefaultConfig is what the process logs with before Init runs.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json", Timestamp: true, Output: os.Stderr}
}

var levels = map[string]zerolog.Level{
	"trace":    zerolog.TraceLevel,
	"debug":    zerolog.DebugLevel,
	"info":     zerolog.InfoLevel,
	"warn":     zerolog.WarnLevel,
	"warning":  zerolog.WarnLevel,
	"error":    zerolog.ErrorLevel,
	"fatal":    zerolog.FatalLevel,
	"panic":    zerolog.PanicLevel,
	"disabled": zerolog.Disabled,
}

var current atomic.Pointer[zerolog.Logger]

//nolint:gochecknoinits // packages log during flag parsing, before Init
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "time"
	zerolog.MessageFieldName = "message"
	Init(DefaultConfig())
}

// Init replaces the process logger and the global level.
func Init(cfg Config) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	ctx := zerolog.New(out).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	SetLogger(ctx.Logger())
}

// parseLevel maps a level name case-insensitively; unknown names mean info.
func parseLevel(name string) zerolog.Level {
	if lvl, ok := levels[strings.ToLower(strings.TrimSpace(name))]; ok {
		return lvl
	}
	return zerolog.InfoLevel
}

// Logger returns a copy of the process logger.
func Logger() zerolog.Logger {
	return *current.Load()
}

// SetLogger swaps the process logger, typically for a NewTestLogger in tests.
//
//nolint:gocritic // zerolog.Logger is passed by value throughout zerolog
func SetLogger(l zerolog.Logger) {
	current.Store(&l)
}

// With starts a child logger context:
//
//	log := logging.With().Str("component", "stats").Logger()
func With() zerolog.Context { return current.Load().With() }

func Debug() *zerolog.Event { return current.Load().Debug() }

func Info() *zerolog.Event { return current.Load().Info() }

func Warn() *zerolog.Event { return current.Load().Warn() }

func Error() *zerolog.Event { return current.Load().Error() }

// Err logs at error level when err is non-nil and at info level otherwise.
func Err(err error) *zerolog.Event { return current.Load().Err(err) }

// GetLevel reports the global level.
func GetLevel() zerolog.Level { return zerolog.GlobalLevel() }

// SetLevelString changes the global level at runtime.
func SetLevelString(level string) { zerolog.SetGlobalLevel(parseLevel(level)) }

// IsLevelEnabled reports whether events at level are written.
func IsLevelEnabled(level zerolog.Level) bool { return level >= zerolog.GlobalLevel() }

// NewTestLogger logs JSON to w, so tests can decode what was written.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
