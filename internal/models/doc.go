// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

/*
Package models defines the data structures shared by the store, the services
and the HTTP layer.

Database Models:

  - Occurrence: one logged event, keyed by its wall-clock minute
  - Location: a named place, optionally mapped to coordinates
  - User: an account with a bcrypt password hash and an admin flag
  - UserSettings: per-user dashboard preferences

Aggregate Models:

  - DayCount, MonthCount: per-bucket counts returned by the store
  - LocationCount: occurrences per location, with coordinates when mapped
  - ChartPoint: a [label, value] pair as consumed by chart widgets
  - HeatPoint, HeatMap: weighted coordinates for the location heat-map
  - Streaks: current and longest runs of days with occurrences
  - Dashboard: everything the home page renders in one payload

Times on Occurrence are naive wall-clock values. The store writes and reads
them as UTC so that the entered minute round-trips unchanged.
*/
package models
