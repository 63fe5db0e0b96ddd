// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tomtom215/occurlog/internal/logging"
	"github.com/tomtom215/occurlog/internal/models"
)

// Seed is the YAML document used to import and export data:
//
//	locations:
//	  - label: Ghent
//	    latitude: 51.05
//	    longitude: 3.73
//	occurrences:
//	  - time: 2025-03-01T14:30:00Z
//	    location: Ghent
//	    target: Bob
//	    context: at the station
type Seed struct {
	Locations   []models.Location   `yaml:"locations"`
	Occurrences []models.Occurrence `yaml:"occurrences"`
}

// SeedResult reports what an import did.
type SeedResult struct {
	Locations   int `json:"locations"`
	Occurrences int `json:"occurrences"`
	Duplicates  int `json:"duplicates"`
}

// ImportSeed reads a Seed document from r. Locations are upserted, keeping
// existing coordinates when the document has none. Occurrences whose time
// already exists are counted as duplicates and skipped.
func (db *DB) ImportSeed(ctx context.Context, r io.Reader) (SeedResult, error) {
	var (
		seed   Seed
		result SeedResult
	)

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return result, fmt.Errorf("failed to decode seed: %w", err)
	}

	for i := range seed.Locations {
		if err := models.CheckLabel("location label", seed.Locations[i].Label); err != nil {
			return result, fmt.Errorf("seed location %d: %w", i, err)
		}
		if err := db.upsertLocation(ctx, &seed.Locations[i]); err != nil {
			return result, err
		}
		result.Locations++
	}

	for i := range seed.Occurrences {
		o := &seed.Occurrences[i]
		if err := checkSeedOccurrence(o); err != nil {
			return result, fmt.Errorf("seed occurrence %d: %w", i, err)
		}
		if _, err := db.InsertOccurrence(ctx, o); err != nil {
			if errors.Is(err, ErrDuplicate) {
				result.Duplicates++
				continue
			}
			return result, fmt.Errorf("seed occurrence %d: %w", i, err)
		}
		result.Occurrences++
	}

	logging.Info().
		Int("locations", result.Locations).
		Int("occurrences", result.Occurrences).
		Int("duplicates", result.Duplicates).
		Msg("Seed imported")

	return result, nil
}

// checkSeedOccurrence applies the rules of the occurrence form. Times are
// stored per minute, so a time with seconds would collide with its minute.
func checkSeedOccurrence(o *models.Occurrence) error {
	if o.Time.IsZero() {
		return errors.New("time is required")
	}
	if o.Time.Second() != 0 || o.Time.Nanosecond() != 0 {
		return fmt.Errorf("time %s is not a whole minute", o.Time.Format(time.RFC3339Nano))
	}
	if err := models.CheckLabel("location", o.Location); err != nil {
		return err
	}
	return models.CheckLabel("target", o.Target)
}

// ImportSeedFile imports the seed at path.
func (db *DB) ImportSeedFile(ctx context.Context, path string) (SeedResult, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return SeedResult{}, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer closeWithLog(f, "seed file")
	return db.ImportSeed(ctx, f)
}

// SeedIfEmpty imports path when the database holds no locations and no
// occurrences. It reports whether an import happened.
func (db *DB) SeedIfEmpty(ctx context.Context, path string) (bool, error) {
	if path == "" {
		return false, nil
	}

	count, err := db.CountOccurrences(ctx)
	if err != nil {
		return false, err
	}
	labels, err := db.ListLocationLabels(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 || len(labels) > 0 {
		return false, nil
	}

	if _, err := db.ImportSeedFile(ctx, path); err != nil {
		return false, err
	}
	return true, nil
}

// ExportSeed writes every location and occurrence to w, occurrences in
// chronological order.
func (db *DB) ExportSeed(ctx context.Context, w io.Writer) error {
	locations, err := db.ListLocations(ctx)
	if err != nil {
		return err
	}
	occurrences, err := db.allOccurrences(ctx)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Seed{Locations: locations, Occurrences: occurrences}); err != nil {
		return fmt.Errorf("failed to encode seed: %w", err)
	}
	return enc.Close()
}

func (db *DB) upsertLocation(ctx context.Context, loc *models.Location) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer db.observe("upsert", "location", time.Now(), &err)

	if loc.Label == "" {
		return fmt.Errorf("location label is required")
	}

	var lat, lon interface{}
	if loc.Latitude != nil {
		lat = *loc.Latitude
	}
	if loc.Longitude != nil {
		lon = *loc.Longitude
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO location (label, latitude, longitude) VALUES (?, ?, ?)
		ON CONFLICT (label) DO UPDATE SET
			latitude = COALESCE(excluded.latitude, latitude),
			longitude = COALESCE(excluded.longitude, longitude)`,
		loc.Label, lat, lon)
	if err != nil {
		return fmt.Errorf("failed to upsert location %q: %w", loc.Label, err)
	}
	return nil
}

func (db *DB) allOccurrences(ctx context.Context) (occurrences []models.Occurrence, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer db.observe("select", "occurrence", time.Now(), &err)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT time, location_label, target, context FROM occurrence ORDER BY time ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query occurrences: %w", err)
	}
	defer rows.Close()

	occurrences = []models.Occurrence{}
	for rows.Next() {
		var o models.Occurrence
		if err := rows.Scan(&o.Time, &o.Location, &o.Target, &o.Context); err != nil {
			return nil, fmt.Errorf("failed to scan occurrence: %w", err)
		}
		o.Time = o.Time.UTC()
		occurrences = append(occurrences, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating occurrences: %w", err)
	}
	return occurrences, nil
}
