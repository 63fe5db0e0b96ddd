// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package stats

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/occurlog/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeeklyBar(t *testing.T) {
	t.Parallel()

	// Wednesday, late evening in a zone east of UTC.
	today := time.Date(2025, 3, 5, 23, 30, 0, 0, time.FixedZone("CET", 3600))
	counts := []models.DayCount{
		{Day: date(2025, 2, 20), Count: 9}, // outside the window
		{Day: date(2025, 2, 27), Count: 2},
		{Day: date(2025, 3, 5), Count: 1},
	}

	got := WeeklyBar(counts, today)
	want := []models.ChartPoint{
		{Label: "Thursday", Value: 2},
		{Label: "Friday", Value: 0},
		{Label: "Saturday", Value: 0},
		{Label: "Sunday", Value: 0},
		{Label: "Monday", Value: 0},
		{Label: "Tuesday", Value: 0},
		{Label: "Wednesday", Value: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("WeeklyBar mismatch (-want +got):\n%s", diff)
	}

	if empty := WeeklyBar(nil, today); len(empty) != 7 {
		t.Errorf("expected 7 points without data, got %d", len(empty))
	}
}

func TestMonthlyLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		today     time.Time
		wantLen   int
		wantFirst string
		wantLast  string
	}{
		{"mid month", date(2025, 3, 15), 28, "2025-02-16", "2025-03-15"},
		{"clamped to short month", date(2025, 3, 31), 31, "2025-03-01", "2025-03-31"},
		{"across year boundary", date(2025, 1, 10), 31, "2024-12-11", "2025-01-10"},
		{"leap year", date(2024, 3, 30), 30, "2024-03-01", "2024-03-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := MonthlyLine(nil, tt.today)
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tt.wantLen)
			}
			if got[0].Label != tt.wantFirst || got[len(got)-1].Label != tt.wantLast {
				t.Errorf("range = %s..%s, want %s..%s", got[0].Label, got[len(got)-1].Label, tt.wantFirst, tt.wantLast)
			}
		})
	}
}

func TestMonthlyLine_FillsCounts(t *testing.T) {
	t.Parallel()

	counts := []models.DayCount{
		{Day: date(2025, 3, 1), Count: 4},
		{Day: date(2025, 3, 3), Count: 2},
	}
	got := MonthlyLine(counts, date(2025, 3, 3))

	values := make(map[string]int, len(got))
	for _, p := range got {
		values[p.Label] = p.Value
	}
	if values["2025-03-01"] != 4 || values["2025-03-02"] != 0 || values["2025-03-03"] != 2 {
		t.Errorf("unexpected values: %v", values)
	}
}

func TestYearlyLine(t *testing.T) {
	t.Parallel()

	counts := []models.MonthCount{
		{Month: date(2024, 3, 1), Count: 7}, // thirteen months ago
		{Month: date(2024, 4, 1), Count: 3},
		{Month: date(2025, 3, 1), Count: 5},
	}
	got := YearlyLine(counts, date(2025, 3, 15))

	if len(got) != 12 {
		t.Fatalf("len = %d, want 12", len(got))
	}
	if got[0] != (models.ChartPoint{Label: "Apr 2024", Value: 3}) {
		t.Errorf("first point = %+v", got[0])
	}
	if got[11] != (models.ChartPoint{Label: "Mar 2025", Value: 5}) {
		t.Errorf("last point = %+v", got[11])
	}
	for _, p := range got[1:11] {
		if p.Value != 0 {
			t.Errorf("expected gap month %s to be 0, got %d", p.Label, p.Value)
		}
	}
}

func TestRanges(t *testing.T) {
	t.Parallel()

	today := time.Date(2025, 3, 15, 18, 0, 0, 0, time.UTC)

	from, to := WeekRange(today)
	if !from.Equal(date(2025, 3, 9)) || !to.Equal(date(2025, 3, 16)) {
		t.Errorf("WeekRange = %v, %v", from, to)
	}
	from, to = MonthRange(today)
	if !from.Equal(date(2025, 2, 16)) || !to.Equal(date(2025, 3, 16)) {
		t.Errorf("MonthRange = %v, %v", from, to)
	}
	from, to = YearRange(today)
	if !from.Equal(date(2024, 4, 1)) || !to.Equal(date(2025, 4, 1)) {
		t.Errorf("YearRange = %v, %v", from, to)
	}
}

func TestHeatMap(t *testing.T) {
	t.Parallel()

	lat, lon := 51.05, 3.73
	counts := []models.LocationCount{
		{Label: "Ghent", Latitude: &lat, Longitude: &lon, Count: 4},
		{Label: "Nowhere", Count: 2},
		{Label: "Half", Latitude: &lat, Count: 1},
	}

	got := HeatMap(counts, [2]float64{50.85, 4.35}, 9)
	want := models.HeatMap{
		Center: [2]float64{50.85, 4.35},
		Zoom:   9,
		Points: []models.HeatPoint{{Label: "Ghent", Latitude: lat, Longitude: lon, Count: 4}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("HeatMap mismatch (-want +got):\n%s", diff)
	}

	defaults := HeatMap(nil, [2]float64{}, 0)
	if defaults.Center != [2]float64{DefaultLatitude, DefaultLongitude} || defaults.Zoom != DefaultZoom {
		t.Errorf("expected default view, got %+v", defaults)
	}
	if defaults.Points == nil {
		t.Error("expected empty, non-nil points")
	}
}
