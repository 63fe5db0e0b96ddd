// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package stats

import "github.com/tomtom215/occurlog/internal/models"

// HeatMap builds heat-map data from per-location counts. Only locations with
// both coordinates become points. A non-positive zoom selects the default
// view.
func HeatMap(counts []models.LocationCount, center [2]float64, zoom int) models.HeatMap {
	if zoom <= 0 {
		center = [2]float64{DefaultLatitude, DefaultLongitude}
		zoom = DefaultZoom
	}

	points := make([]models.HeatPoint, 0, len(counts))
	for _, c := range counts {
		if c.Latitude == nil || c.Longitude == nil {
			continue
		}
		points = append(points, models.HeatPoint{
			Label:     c.Label,
			Latitude:  *c.Latitude,
			Longitude: *c.Longitude,
			Count:     c.Count,
		})
	}

	return models.HeatMap{Center: center, Zoom: zoom, Points: points}
}
