// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package models

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// MaxLabelLength bounds location labels and targets.
const MaxLabelLength = 80

// CheckLabel reports an empty or overlong location label or target. field
// names the value in the error.
func CheckLabel(field, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", field)
	}
	if utf8.RuneCountInString(value) > MaxLabelLength {
		return fmt.Errorf("%s must be at most %d characters", field, MaxLabelLength)
	}
	return nil
}

// Occurrence is one logged event. Time is unique across all occurrences.
type Occurrence struct {
	Time      time.Time `json:"time" yaml:"time"`
	Location  string    `json:"location" yaml:"location"`
	Target    string    `json:"target" yaml:"target"`
	Context   string    `json:"context" yaml:"context"`
	CreatedBy *int64    `json:"created_by,omitempty" yaml:"-"`
}

// Location maps a label to optional coordinates. Latitude and Longitude are
// nil until an admin maps the location.
type Location struct {
	Label     string   `json:"label" yaml:"label"`
	Latitude  *float64 `json:"latitude" yaml:"latitude,omitempty"`
	Longitude *float64 `json:"longitude" yaml:"longitude,omitempty"`
}

// Mapped reports whether both coordinates are set.
func (l Location) Mapped() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// OccurrenceOptions holds the form history for the new-occurrence form.
type OccurrenceOptions struct {
	Locations []string `json:"locations"`
	Targets   []string `json:"targets"`
}
