// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package models

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// DayCount is the number of occurrences on one calendar day.
type DayCount struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

// MonthCount is the number of occurrences in one calendar month.
type MonthCount struct {
	Month time.Time `json:"month"`
	Count int       `json:"count"`
}

// LocationCount is the number of occurrences at one location.
type LocationCount struct {
	Label     string   `json:"label"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Count     int      `json:"count"`
}

// ChartPoint is one labeled value. It encodes as a two element array,
// ["Monday", 3], which is the shape chart widgets consume directly.
type ChartPoint struct {
	Label string
	Value int
}

// MarshalJSON encodes the point as [label, value].
func (p ChartPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{p.Label, p.Value})
}

// UnmarshalJSON decodes a [label, value] array.
func (p *ChartPoint) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("chart point: expected 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.Label); err != nil {
		return fmt.Errorf("chart point label: %w", err)
	}
	if err := json.Unmarshal(raw[1], &p.Value); err != nil {
		return fmt.Errorf("chart point value: %w", err)
	}
	return nil
}

// HeatPoint is a weighted coordinate on the heat-map.
type HeatPoint struct {
	Label     string  `json:"label"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int     `json:"count"`
}

// HeatMap is the data needed to draw the location heat-map.
type HeatMap struct {
	Center [2]float64  `json:"center"`
	Zoom   int         `json:"zoom"`
	Points []HeatPoint `json:"points"`
}

// Streaks summarizes runs of consecutive days with at least one occurrence.
// LongestStart and LongestEnd are nil when there are no occurrences at all;
// DaysSinceLast is -1 in that case.
type Streaks struct {
	Current       int        `json:"current"`
	Longest       int        `json:"longest"`
	LongestStart  *time.Time `json:"longest_start,omitempty"`
	LongestEnd    *time.Time `json:"longest_end,omitempty"`
	DaysSinceLast int        `json:"days_since_last"`
	Total         int        `json:"total_days"`
}

// Dashboard bundles every chart on the home page.
type Dashboard struct {
	Weekly      []ChartPoint `json:"weekly"`
	Monthly     []ChartPoint `json:"monthly"`
	Yearly      []ChartPoint `json:"yearly"`
	Streaks     Streaks      `json:"streaks"`
	HeatMap     HeatMap      `json:"heatmap"`
	Total       int          `json:"total"`
	GeneratedAt time.Time    `json:"generated_at"`
}
