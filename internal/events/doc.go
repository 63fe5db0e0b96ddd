// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

/*
Package events is the in-process publish/subscribe bus.

The bus is a Watermill GoChannel pub/sub driven by a message.Router. Domain
services publish typed payloads (OccurrenceCreated, LocationMapped,
UserCreated) as JSON; consumers such as the stats cache, the ntfy notifier
and the WebSocket hub subscribe with Subscribe and receive decoded values.

# Middleware

Handlers run behind three router middlewares, outermost first:

  - PoisonQueue: messages that still fail after retries are moved to
    TopicPoisoned and acknowledged, so GoChannel does not redeliver them
  - Recoverer: handler panics become errors
  - Retry: exponential backoff for transient failures

# Usage

	bus, err := events.NewBus(events.DefaultConfig(), logging.NewWatermillLogger())
	if err != nil {
	    return err
	}
	events.Subscribe(bus, "stats-invalidate", events.TopicOccurrenceCreated,
	    func(ctx context.Context, e events.OccurrenceCreated) error {
	        statsService.Invalidate()
	        return nil
	    })
	go bus.Run(ctx)
	<-bus.Running()

	err = bus.Publish(ctx, events.TopicOccurrenceCreated, events.OccurrenceCreated{...})

Handlers must be registered before Run.
*/
package events
