// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package services

import (
	"context"
	"fmt"

	"github.com/thejerf/suture/v4"
)

// EventRouter is satisfied by *events.Bus.
type EventRouter interface {
	Run(ctx context.Context) error
}

// EventBusService runs the event router. A watermill router cannot be
// started twice, so a router that stops on its own is not restarted.
type EventBusService struct {
	bus  EventRouter
	name string
}

// NewEventBusService wraps bus.
func NewEventBusService(bus EventRouter) *EventBusService {
	return &EventBusService{bus: bus, name: "event-bus"}
}

func (e *EventBusService) Serve(ctx context.Context) error {
	err := e.bus.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("event router stopped: %w: %w", err, suture.ErrDoNotRestart)
	}
	return suture.ErrDoNotRestart
}

func (e *EventBusService) String() string {
	return e.name
}
