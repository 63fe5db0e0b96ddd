// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/occurlog/internal/models"
)

// CountPerDay returns the number of occurrences on each day in [from, to),
// ascending. Days without occurrences are absent; the stats package fills
// the gaps. from and to are interpreted as wall-clock dates.
func (db *DB) CountPerDay(ctx context.Context, from, to time.Time) (counts []models.DayCount, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer db.observe("aggregate_day", "occurrence", time.Now(), &err)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT
			CAST(DATE_TRUNC('day', time) AS DATE) AS day,
			COUNT(time) AS amount
		FROM occurrence
		WHERE time >= CAST(? AS TIMESTAMP) AND time < CAST(? AS TIMESTAMP)
		GROUP BY DATE_TRUNC('day', time)
		ORDER BY DATE_TRUNC('day', time) ASC`,
		sqlTimestamp(from), sqlTimestamp(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query occurrences per day: %w", err)
	}
	defer rows.Close()

	counts = []models.DayCount{}
	for rows.Next() {
		var c models.DayCount
		if err := rows.Scan(&c.Day, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan day count: %w", err)
		}
		c.Day = c.Day.UTC()
		counts = append(counts, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating day counts: %w", err)
	}
	return counts, nil
}

// CountPerMonth returns the number of occurrences in each month in
// [from, to), ascending.
func (db *DB) CountPerMonth(ctx context.Context, from, to time.Time) (counts []models.MonthCount, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer db.observe("aggregate_month", "occurrence", time.Now(), &err)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT
			CAST(DATE_TRUNC('month', time) AS DATE) AS month,
			COUNT(time) AS amount
		FROM occurrence
		WHERE time >= CAST(? AS TIMESTAMP) AND time < CAST(? AS TIMESTAMP)
		GROUP BY DATE_TRUNC('month', time)
		ORDER BY DATE_TRUNC('month', time) ASC`,
		sqlTimestamp(from), sqlTimestamp(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query occurrences per month: %w", err)
	}
	defer rows.Close()

	counts = []models.MonthCount{}
	for rows.Next() {
		var c models.MonthCount
		if err := rows.Scan(&c.Month, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan month count: %w", err)
		}
		c.Month = c.Month.UTC()
		counts = append(counts, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating month counts: %w", err)
	}
	return counts, nil
}

// CountPerLocation returns the number of occurrences per location, with the
// location's coordinates when mapped. Locations without occurrences are
// omitted.
func (db *DB) CountPerLocation(ctx context.Context) (counts []models.LocationCount, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer db.observe("aggregate_location", "occurrence", time.Now(), &err)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT
			l.label,
			l.latitude,
			l.longitude,
			COUNT(o.time) AS amount
		FROM location l
		JOIN occurrence o ON o.location_label = l.label
		GROUP BY l.label, l.latitude, l.longitude
		ORDER BY l.label ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query occurrences per location: %w", err)
	}
	defer rows.Close()

	counts = []models.LocationCount{}
	for rows.Next() {
		var (
			c        models.LocationCount
			lat, lon sql.NullFloat64
		)
		if err := rows.Scan(&c.Label, &lat, &lon, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan location count: %w", err)
		}
		if lat.Valid {
			c.Latitude = &lat.Float64
		}
		if lon.Valid {
			c.Longitude = &lon.Float64
		}
		counts = append(counts, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating location counts: %w", err)
	}
	return counts, nil
}

// ListOccurrenceDays returns each distinct day with at least one occurrence,
// ascending.
func (db *DB) ListOccurrenceDays(ctx context.Context) (days []time.Time, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer db.observe("aggregate_days", "occurrence", time.Now(), &err)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT DISTINCT CAST(time AS DATE) AS day
		FROM occurrence
		ORDER BY day ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query occurrence days: %w", err)
	}
	defer rows.Close()

	days = []time.Time{}
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("failed to scan occurrence day: %w", err)
		}
		days = append(days, day.UTC())
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating occurrence days: %w", err)
	}
	return days, nil
}
