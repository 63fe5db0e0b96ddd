// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package events

import (
	"context"

	"github.com/tomtom215/occurlog/internal/models"
)

// Topics published on the bus.
const (
	TopicOccurrenceCreated = "occurrence.created"
	TopicLocationMapped    = "location.mapped"
	TopicUserCreated       = "user.created"

	// TopicPoisoned receives messages whose handler kept failing.
	TopicPoisoned = "events.poisoned"
)

// OccurrenceCreated is published after an occurrence has been stored.
type OccurrenceCreated struct {
	Occurrence      models.Occurrence `json:"occurrence"`
	Actor           string            `json:"actor"`
	LocationCreated bool              `json:"location_created"`
}

// LocationMapped is published after an admin set a location's coordinates.
type LocationMapped struct {
	Label     string  `json:"label"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Actor     string  `json:"actor"`
}

// UserCreated is published after an account was created, either by an admin,
// by self registration or by the admin bootstrap.
type UserCreated struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Admin     bool   `json:"admin"`
	CreatedBy string `json:"created_by"`
}

// Publisher publishes a payload on a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

// Discard is a Publisher that drops everything. Used by the CLI, which runs
// without a bus.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(context.Context, string, interface{}) error { return nil }
