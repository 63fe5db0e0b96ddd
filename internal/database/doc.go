// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

/*
Package database provides the DuckDB-backed store for occurrences, locations,
users and user settings.

# Schema

	location(label PK, latitude, longitude)
	occurrence(time PK, location_label, target, context, created_by)
	users(id PK from users_id_seq, username UNIQUE, email UNIQUE, password_hash, admin, created_at)
	user_settings(user_id PK, timezone, map_latitude, map_longitude, map_zoom, notify_new_occurrence, updated_at)
	schema_migrations(version PK, name, applied_at)

# Time Handling

Occurrence times are naive wall-clock minutes. They are bound as strings and
cast to TIMESTAMP in SQL, and scanned back as UTC, so the minute a user enters
is the minute that is stored and returned.

# Aggregates

CountPerDay, CountPerMonth, CountPerLocation and ListOccurrenceDays return raw
buckets. Filling gaps, labeling and streak computation happen in the stats
package so that they can be tested without a database.

# Usage

	db, err := database.New(&cfg.Database)
	if err != nil {
	    return err
	}
	defer db.Close()

	created, err := db.InsertOccurrence(ctx, &models.Occurrence{
	    Time:     t,
	    Location: "Ghent",
	    Target:   "Bob",
	    Context:  "at the station",
	})

Every method accepts a context; when it has no deadline a 30 second timeout
is applied.
*/
package database
