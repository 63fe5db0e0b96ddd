// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

// Package occurrence logs occurrences and maps their locations.
package occurrence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/occurlog/internal/database"
	"github.com/tomtom215/occurlog/internal/events"
	"github.com/tomtom215/occurlog/internal/logging"
	"github.com/tomtom215/occurlog/internal/metrics"
	"github.com/tomtom215/occurlog/internal/models"
	"github.com/tomtom215/occurlog/internal/validation"
)

// Errors returned by the service.
var (
	ErrInvalidTime     = errors.New("invalid time, expected format 2006-01-02T15:04")
	ErrUnknownLocation = errors.New("unknown location")
	ErrDuplicate       = errors.New("an occurrence already exists at that time")
	ErrInvalidInput    = errors.New("invalid occurrence")
)

// Store is the part of the database the service needs.
type Store interface {
	InsertOccurrence(ctx context.Context, o *models.Occurrence) (bool, error)
	ListLocationLabels(ctx context.Context) ([]string, error)
	ListTargets(ctx context.Context) ([]string, error)
	MapLocation(ctx context.Context, label string, latitude, longitude float64) error
}

// Service logs occurrences and publishes the resulting events.
type Service struct {
	store     Store
	publisher events.Publisher
}

// NewService creates an occurrence service. A nil publisher discards events.
func NewService(store Store, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Discard
	}
	return &Service{store: store, publisher: publisher}
}

// ParseTime parses a time submitted by the new-occurrence form. The result
// is a wall-clock minute in UTC.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(validation.FormTimeLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return t, nil
}

// LocationOptions returns every known location label in the order they were
// first used.
func (s *Service) LocationOptions(ctx context.Context) ([]string, error) {
	return s.store.ListLocationLabels(ctx)
}

// SortedLocationOptions returns every known location label, sorted.
func (s *Service) SortedLocationOptions(ctx context.Context) ([]string, error) {
	labels, err := s.store.ListLocationLabels(ctx)
	if err != nil {
		return nil, err
	}
	sorted := append([]string(nil), labels...)
	sort.Strings(sorted)
	return sorted, nil
}

// TargetOptions returns every distinct target in the order first logged.
func (s *Service) TargetOptions(ctx context.Context) ([]string, error) {
	return s.store.ListTargets(ctx)
}

// Options returns the history for both form fields.
func (s *Service) Options(ctx context.Context) (models.OccurrenceOptions, error) {
	locations, err := s.LocationOptions(ctx)
	if err != nil {
		return models.OccurrenceOptions{}, err
	}
	targets, err := s.TargetOptions(ctx)
	if err != nil {
		return models.OccurrenceOptions{}, err
	}
	return models.OccurrenceOptions{Locations: locations, Targets: targets}, nil
}

// Add logs a new occurrence. Location, target and note (the occurrence's
// free-text context) are trimmed; a location label that has not been seen
// before is created unmapped. actor may be nil for imports.
func (s *Service) Add(ctx context.Context, t time.Time, location, target, note string, actor *models.User) (*models.Occurrence, error) {
	o := &models.Occurrence{
		Time:     t.Truncate(time.Minute),
		Location: strings.TrimSpace(location),
		Target:   strings.TrimSpace(target),
		Context:  strings.TrimSpace(note),
	}
	if err := checkLabel("location", o.Location); err != nil {
		return nil, err
	}
	if err := checkLabel("target", o.Target); err != nil {
		return nil, err
	}

	actorName := ""
	if actor != nil {
		id := actor.ID
		o.CreatedBy = &id
		actorName = actor.Username
	}

	created, err := s.store.InsertOccurrence(ctx, o)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, o.Time.Format(validation.FormTimeLayout))
		}
		return nil, fmt.Errorf("failed to add occurrence: %w", err)
	}
	metrics.OccurrencesCreated.Inc()

	logging.Ctx(ctx).Info().
		Str("location", o.Location).
		Str("target", o.Target).
		Str("actor", actorName).
		Bool("location_created", created).
		Msg("Occurrence logged")

	s.publish(ctx, events.TopicOccurrenceCreated, events.OccurrenceCreated{
		Occurrence:      *o,
		Actor:           actorName,
		LocationCreated: created,
	})
	return o, nil
}

// MapLocation sets the coordinates of an existing location.
func (s *Service) MapLocation(ctx context.Context, label string, latitude, longitude float64, actor string) error {
	label = strings.TrimSpace(label)
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return fmt.Errorf("%w: coordinates out of range", ErrInvalidInput)
	}

	if err := s.store.MapLocation(ctx, label, latitude, longitude); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("%w: %q", ErrUnknownLocation, label)
		}
		return fmt.Errorf("failed to map location: %w", err)
	}
	metrics.LocationsMapped.Inc()

	logging.Ctx(ctx).Info().
		Str("location", label).
		Float64("latitude", latitude).
		Float64("longitude", longitude).
		Str("actor", actor).
		Msg("Location mapped")

	s.publish(ctx, events.TopicLocationMapped, events.LocationMapped{
		Label:     label,
		Latitude:  latitude,
		Longitude: longitude,
		Actor:     actor,
	})
	return nil
}

// publish logs instead of failing: the occurrence is already stored.
func (s *Service) publish(ctx context.Context, topic string, payload interface{}) {
	if err := s.publisher.Publish(ctx, topic, payload); err != nil {
		logging.CtxErr(ctx, err).Str("topic", topic).Msg("Failed to publish event")
	}
}

func checkLabel(field, value string) error {
	if err := models.CheckLabel(field, value); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}
