// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/occurlog/internal/models"
)

// ListLocationLabels returns every location label in insertion order.
func (db *DB) ListLocationLabels(ctx context.Context) (labels []string, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer db.observe("select", "location", time.Now(), &err)

	rows, err := db.conn.QueryContext(ctx, `SELECT label FROM location ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query location labels: %w", err)
	}
	defer rows.Close()

	labels = []string{}
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("failed to scan location label: %w", err)
		}
		labels = append(labels, label)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating location labels: %w", err)
	}
	return labels, nil
}

// ListLocations returns all locations with their coordinates, sorted by label.
func (db *DB) ListLocations(ctx context.Context) (locations []models.Location, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer db.observe("select", "location", time.Now(), &err)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT label, latitude, longitude FROM location ORDER BY label ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	locations = []models.Location{}
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locations: %w", err)
	}
	return locations, nil
}

// GetLocation returns the location with the given label or ErrNotFound.
func (db *DB) GetLocation(ctx context.Context, label string) (loc models.Location, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer db.observe("select", "location", time.Now(), &err)

	row := db.conn.QueryRowContext(ctx,
		`SELECT label, latitude, longitude FROM location WHERE label = ?`, label)
	loc, err = scanLocation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Location{}, fmt.Errorf("location %q: %w", label, ErrNotFound)
	}
	return loc, err
}

// MapLocation sets the coordinates of an existing location.
func (db *DB) MapLocation(ctx context.Context, label string, latitude, longitude float64) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer db.observe("update", "location", time.Now(), &err)

	res, err := db.conn.ExecContext(ctx,
		`UPDATE location SET latitude = ?, longitude = ? WHERE label = ?`,
		latitude, longitude, label)
	if err != nil {
		return fmt.Errorf("failed to map location: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("location %q: %w", label, ErrNotFound)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLocation(row rowScanner) (models.Location, error) {
	var (
		loc      models.Location
		lat, lon sql.NullFloat64
	)
	if err := row.Scan(&loc.Label, &lat, &lon); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return loc, err
		}
		return loc, fmt.Errorf("failed to scan location: %w", err)
	}
	if lat.Valid {
		loc.Latitude = &lat.Float64
	}
	if lon.Valid {
		loc.Longitude = &lon.Float64
	}
	return loc, nil
}
