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

	"github.com/tomtom215/occurlog/internal/logging"
	"github.com/tomtom215/occurlog/internal/models"
)

// InsertOccurrence stores o. When o.Location is not a known label the
// location is created with null coordinates in the same transaction.
// It returns whether a new location was created, and ErrDuplicate when an
// occurrence already exists at o.Time.
func (db *DB) InsertOccurrence(ctx context.Context, o *models.Occurrence) (locationCreated bool, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer db.observe("insert", "occurrence", time.Now(), &err)

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("Transaction rollback failed")
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO location (label, latitude, longitude) VALUES (?, NULL, NULL) ON CONFLICT DO NOTHING`,
		o.Location)
	if err != nil {
		return false, fmt.Errorf("failed to insert location: %w", err)
	}
	if n, raErr := res.RowsAffected(); raErr == nil && n > 0 {
		locationCreated = true
	}

	var createdBy interface{}
	if o.CreatedBy != nil {
		createdBy = *o.CreatedBy
	}

	res, err = tx.ExecContext(ctx,
		`INSERT INTO occurrence (time, location_label, target, context, created_by)
		VALUES (CAST(? AS TIMESTAMP), ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
		sqlTimestamp(wallClock(o.Time)), o.Location, o.Target, o.Context, createdBy)
	if err != nil {
		return false, fmt.Errorf("failed to insert occurrence: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		err = fmt.Errorf("occurrence at %s: %w", sqlTimestamp(o.Time), ErrDuplicate)
		return false, err
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	logging.Debug().
		Str("location", o.Location).
		Bool("location_created", locationCreated).
		Msg("Occurrence inserted")

	return locationCreated, nil
}

// ListTargets returns every distinct target in the order first logged.
func (db *DB) ListTargets(ctx context.Context) (targets []string, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer db.observe("select", "occurrence", time.Now(), &err)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT target
		FROM occurrence
		GROUP BY target
		ORDER BY MIN(rowid) ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query targets: %w", err)
	}
	defer rows.Close()

	targets = []string{}
	for rows.Next() {
		var target string
		if err := rows.Scan(&target); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		targets = append(targets, target)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating targets: %w", err)
	}
	return targets, nil
}

// ListOccurrences returns occurrences newest first.
func (db *DB) ListOccurrences(ctx context.Context, limit, offset int) (occurrences []models.Occurrence, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer db.observe("select", "occurrence", time.Now(), &err)

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT time, location_label, target, context, created_by
		FROM occurrence
		ORDER BY time DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query occurrences: %w", err)
	}
	defer rows.Close()

	occurrences = []models.Occurrence{}
	for rows.Next() {
		var (
			o         models.Occurrence
			createdBy sql.NullInt64
		)
		if err := rows.Scan(&o.Time, &o.Location, &o.Target, &o.Context, &createdBy); err != nil {
			return nil, fmt.Errorf("failed to scan occurrence: %w", err)
		}
		o.Time = o.Time.UTC()
		if createdBy.Valid {
			id := createdBy.Int64
			o.CreatedBy = &id
		}
		occurrences = append(occurrences, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating occurrences: %w", err)
	}
	return occurrences, nil
}

// CountOccurrences returns the total number of occurrences.
func (db *DB) CountOccurrences(ctx context.Context) (count int, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer db.observe("count", "occurrence", time.Now(), &err)

	if err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM occurrence`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count occurrences: %w", err)
	}
	return count, nil
}

// DeleteOccurrence removes the occurrence logged at t or returns ErrNotFound.
func (db *DB) DeleteOccurrence(ctx context.Context, t time.Time) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer db.observe("delete", "occurrence", time.Now(), &err)

	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM occurrence WHERE time = CAST(? AS TIMESTAMP)`, sqlTimestamp(wallClock(t)))
	if err != nil {
		return fmt.Errorf("failed to delete occurrence: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("occurrence at %s: %w", sqlTimestamp(t), ErrNotFound)
	}
	return nil
}
