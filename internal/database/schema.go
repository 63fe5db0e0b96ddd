// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

/*
schema.go - Database Schema

Tables:
  - location: label to optional coordinates
  - occurrence: one row per logged event, keyed by its wall-clock minute
  - users: accounts; ids come from users_id_seq
  - user_settings: per-user dashboard preferences

DuckDB foreign keys block updates of the referenced parent row, and
MapLocation updates location rows, so occurrence.location_label carries no
FOREIGN KEY. InsertOccurrence creates the location inside the same
transaction instead.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// tableCreationQueries returns the table creation SQL statements
func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS location (
			label VARCHAR(80) PRIMARY KEY,
			latitude DOUBLE,
			longitude DOUBLE
		)`,
		`CREATE TABLE IF NOT EXISTS occurrence (
			time TIMESTAMP PRIMARY KEY,
			location_label VARCHAR(80) NOT NULL,
			target VARCHAR(80) NOT NULL,
			context TEXT NOT NULL,
			created_by INTEGER
		)`,
		`CREATE SEQUENCE IF NOT EXISTS users_id_seq START 1`,
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY DEFAULT nextval('users_id_seq'),
			username VARCHAR(80) UNIQUE NOT NULL,
			email VARCHAR(120) UNIQUE NOT NULL,
			password_hash VARCHAR(300) NOT NULL,
			admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_settings (
			user_id INTEGER PRIMARY KEY,
			timezone VARCHAR(64),
			map_latitude DOUBLE,
			map_longitude DOUBLE,
			map_zoom INTEGER,
			notify_new_occurrence BOOLEAN,
			updated_at TIMESTAMP
		)`,
	}
}
