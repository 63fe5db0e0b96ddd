// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package notify

import (
	"context"
	"errors"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/occurlog/internal/events"
	"github.com/tomtom215/occurlog/internal/logging"
)

// Subscribe sends a notification for every new occurrence and new user.
// Nothing is registered when the client is disabled.
func (c *Client) Subscribe(bus *events.Bus) {
	if !c.Enabled() {
		logging.Info().Msg("ntfy notifications disabled")
		return
	}

	events.Subscribe(bus, "ntfy-occurrence-created", events.TopicOccurrenceCreated,
		func(ctx context.Context, e events.OccurrenceCreated) error {
			return c.deliver(ctx, NewOccurrenceMessage(e.Occurrence, e.Actor))
		})
	events.Subscribe(bus, "ntfy-user-created", events.TopicUserCreated,
		func(ctx context.Context, e events.UserCreated) error {
			return c.deliver(ctx, NewUserMessage(e.Username, e.Email, e.Admin))
		})
}

// deliver drops messages while the breaker is open; retrying them would only
// hold up the handler.
func (c *Client) deliver(ctx context.Context, msg Message) error {
	err := c.Send(ctx, msg)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		logging.Ctx(ctx).Warn().Str("kind", msg.Kind).Msg("Dropping notification, ntfy circuit open")
		return nil
	}
	return err
}
