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

const userColumns = `id, username, email, password_hash, admin, created_at`

// CreateUser inserts u and sets u.ID and u.CreatedAt. It returns
// ErrDuplicate when the username or email is taken.
func (db *DB) CreateUser(ctx context.Context, u *models.User) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer db.observe("insert", "users", time.Now(), &err)

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	err = db.conn.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, admin, created_at)
		VALUES (?, ?, ?, ?, CAST(? AS TIMESTAMP))
		RETURNING id`,
		u.Username, u.Email, u.PasswordHash, u.Admin, sqlTimestamp(u.CreatedAt.UTC()),
	).Scan(&u.ID)
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("user %q: %w", u.Username, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByUsername returns the user or ErrNotFound.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (u *models.User, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer db.observe("select", "users", time.Now(), &err)

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	u, err = scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	return u, err
}

// GetUserByID returns the user or ErrNotFound.
func (db *DB) GetUserByID(ctx context.Context, id int64) (u *models.User, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer db.observe("select", "users", time.Now(), &err)

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err = scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return u, err
}

// ListUsers returns all users ordered by id.
func (db *DB) ListUsers(ctx context.Context) (users []models.User, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer db.observe("select", "users", time.Now(), &err)

	rows, err := db.conn.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users = []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// CountUsers returns the number of accounts.
func (db *DB) CountUsers(ctx context.Context) (count int, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer db.observe("count", "users", time.Now(), &err)

	if err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// UpdatePassword replaces the stored password hash.
func (db *DB) UpdatePassword(ctx context.Context, userID int64, passwordHash string) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer db.observe("update", "users", time.Now(), &err)

	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	return nil
}

// GetUserSettings returns the stored settings for userID. When no row exists
// a zero UserSettings carrying only the user id is returned.
func (db *DB) GetUserSettings(ctx context.Context, userID int64) (s models.UserSettings, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer db.observe("select", "user_settings", time.Now(), &err)

	var (
		timezone  sql.NullString
		lat, lon  sql.NullFloat64
		zoom      sql.NullInt64
		notify    sql.NullBool
		updatedAt sql.NullTime
	)
	err = db.conn.QueryRowContext(ctx, `
		SELECT timezone, map_latitude, map_longitude, map_zoom, notify_new_occurrence, updated_at
		FROM user_settings WHERE user_id = ?`, userID,
	).Scan(&timezone, &lat, &lon, &zoom, &notify, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserSettings{UserID: userID}, nil
	}
	if err != nil {
		return models.UserSettings{}, fmt.Errorf("failed to query user settings: %w", err)
	}

	s = models.UserSettings{
		UserID:              userID,
		Timezone:            timezone.String,
		MapLatitude:         lat.Float64,
		MapLongitude:        lon.Float64,
		MapZoom:             int(zoom.Int64),
		NotifyNewOccurrence: notify.Bool,
	}
	if updatedAt.Valid {
		s.UpdatedAt = updatedAt.Time.UTC()
	}
	return s, nil
}

// UpsertUserSettings stores s, replacing any previous row for s.UserID.
func (db *DB) UpsertUserSettings(ctx context.Context, s *models.UserSettings) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer db.observe("upsert", "user_settings", time.Now(), &err)

	s.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO user_settings
			(user_id, timezone, map_latitude, map_longitude, map_zoom, notify_new_occurrence, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CAST(? AS TIMESTAMP))
		ON CONFLICT (user_id) DO UPDATE SET
			timezone = excluded.timezone,
			map_latitude = excluded.map_latitude,
			map_longitude = excluded.map_longitude,
			map_zoom = excluded.map_zoom,
			notify_new_occurrence = excluded.notify_new_occurrence,
			updated_at = excluded.updated_at`,
		s.UserID, s.Timezone, s.MapLatitude, s.MapLongitude, s.MapZoom, s.NotifyNewOccurrence,
		sqlTimestamp(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert user settings: %w", err)
	}
	return nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Admin, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}
