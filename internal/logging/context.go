// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ctxKey int

const (
	fieldsKey ctxKey = iota
	loggerKey
)

// fields are the identifiers every log line of a request or event carries.
type fields struct {
	requestID     string
	correlationID string
	username      string
}

func fieldsFrom(ctx context.Context) fields {
	f, _ := ctx.Value(fieldsKey).(fields)
	return f
}

func withFields(ctx context.Context, update func(*fields)) context.Context {
	f := fieldsFrom(ctx)
	update(&f)
	return context.WithValue(ctx, fieldsKey, f)
}

// GenerateCorrelationID returns a short id that follows an occurrence from
// the API through the event bus to its subscribers.
func GenerateCorrelationID() string { return uuid.NewString()[:8] }

// GenerateRequestID returns a UUID for one HTTP request.
func GenerateRequestID() string { return uuid.NewString() }

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return withFields(ctx, func(f *fields) { f.requestID = id })
}

func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return withFields(ctx, func(f *fields) { f.correlationID = id })
}

func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return ContextWithCorrelationID(ctx, GenerateCorrelationID())
}

// ContextWithUsername tags later log lines with the signed-in user.
func ContextWithUsername(ctx context.Context, username string) context.Context {
	return withFields(ctx, func(f *fields) { f.username = username })
}

func RequestIDFromContext(ctx context.Context) string     { return fieldsFrom(ctx).requestID }
func CorrelationIDFromContext(ctx context.Context) string { return fieldsFrom(ctx).correlationID }
func UsernameFromContext(ctx context.Context) string      { return fieldsFrom(ctx).username }

// ContextWithLogger makes Ctx use logger instead of the process logger.
//
//nolint:gocritic // zerolog.Logger is passed by value throughout zerolog
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// Ctx returns the context's logger with the request id, correlation id and
// username of ctx attached when they are set:
//
//	logging.Ctx(ctx).Info().Str("target", o.Target).Msg("Occurrence logged")
func Ctx(ctx context.Context) *zerolog.Logger {
	base, ok := ctx.Value(loggerKey).(zerolog.Logger)
	if !ok {
		base = Logger()
	}

	f := fieldsFrom(ctx)
	lc := base.With()
	if f.correlationID != "" {
		lc = lc.Str("correlation_id", f.correlationID)
	}
	if f.requestID != "" {
		lc = lc.Str("request_id", f.requestID)
	}
	if f.username != "" {
		lc = lc.Str("username", f.username)
	}
	l := lc.Logger()
	return &l
}

func CtxInfo(ctx context.Context) *zerolog.Event { return Ctx(ctx).Info() }

func CtxWarn(ctx context.Context) *zerolog.Event { return Ctx(ctx).Warn() }

func CtxErr(ctx context.Context, err error) *zerolog.Event { return Ctx(ctx).Err(err) }

// WithComponent returns a child of the process logger tagged with component.
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}
