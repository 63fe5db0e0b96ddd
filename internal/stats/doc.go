// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

// Package stats shapes raw occurrence counts into dashboard charts.
//
// The chart functions (WeeklyBar, MonthlyLine, YearlyLine, Streaks, HeatMap)
// are pure and take "today" as an argument. Service combines them over a
// Store and caches the result per day, timezone and map view until an
// occurrence is added or a location is mapped.
package stats
