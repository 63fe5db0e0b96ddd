// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package stats

import (
	"time"

	"github.com/tomtom215/occurlog/internal/models"
)

// Label layouts for the line charts.
const (
	DayLabelLayout   = "2006-01-02"
	MonthLabelLayout = "Jan 2006"
)

// Default heat-map view.
const (
	DefaultLatitude  = 51.05
	DefaultLongitude = 3.73
	DefaultZoom      = 6
)

// Date returns the calendar date of t, in t's own location, as midnight UTC.
// Occurrence times are stored as wall-clock values, so this is the form the
// store's day buckets come back in.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekRange returns [from, to) covering the seven days ending today.
func WeekRange(today time.Time) (from, to time.Time) {
	day := Date(today)
	return day.AddDate(0, 0, -6), day.AddDate(0, 0, 1)
}

// MonthRange returns [from, to) covering the days after the same day last
// month through today. When last month is shorter the start is clamped to
// its final day, so March 31 yields March 1 through March 31.
func MonthRange(today time.Time) (from, to time.Time) {
	day := Date(today)
	firstOfThisMonth := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonth := firstOfThisMonth.AddDate(0, -1, 0)
	d := day.Day()
	if n := daysIn(lastMonth); d > n {
		d = n
	}
	sameDay := time.Date(lastMonth.Year(), lastMonth.Month(), d, 0, 0, 0, 0, time.UTC)
	return sameDay.AddDate(0, 0, 1), day.AddDate(0, 0, 1)
}

// YearRange returns [from, to) covering the twelve months ending with the
// current month.
func YearRange(today time.Time) (from, to time.Time) {
	day := Date(today)
	first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, -11, 0), first.AddDate(0, 1, 0)
}

func daysIn(month time.Time) int {
	return time.Date(month.Year(), month.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func dayKey(t time.Time) string {
	return Date(t).Format(DayLabelLayout)
}

// WeeklyBar returns one point per day for the seven days ending today,
// labeled with the English weekday name. Days without occurrences are 0.
func WeeklyBar(counts []models.DayCount, today time.Time) []models.ChartPoint {
	byDay := make(map[string]int, len(counts))
	for _, c := range counts {
		byDay[dayKey(c.Day)] += c.Count
	}

	from, _ := WeekRange(today)
	points := make([]models.ChartPoint, 0, 7)
	for i := 0; i < 7; i++ {
		d := from.AddDate(0, 0, i)
		points = append(points, models.ChartPoint{
			Label: d.Weekday().String(),
			Value: byDay[d.Format(DayLabelLayout)],
		})
	}
	return points
}

// MonthlyLine returns one point per day over MonthRange(today), labeled
// 2006-01-02, with missing days filled with 0.
func MonthlyLine(counts []models.DayCount, today time.Time) []models.ChartPoint {
	byDay := make(map[string]int, len(counts))
	for _, c := range counts {
		byDay[dayKey(c.Day)] += c.Count
	}

	from, to := MonthRange(today)
	points := make([]models.ChartPoint, 0, 31)
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		label := d.Format(DayLabelLayout)
		points = append(points, models.ChartPoint{Label: label, Value: byDay[label]})
	}
	return points
}

// YearlyLine returns one point per month over YearRange(today), labeled
// "Jan 2006", with missing months filled with 0.
func YearlyLine(counts []models.MonthCount, today time.Time) []models.ChartPoint {
	byMonth := make(map[string]int, len(counts))
	for _, c := range counts {
		byMonth[c.Month.Format(MonthLabelLayout)] += c.Count
	}

	from, _ := YearRange(today)
	points := make([]models.ChartPoint, 0, 12)
	for i := 0; i < 12; i++ {
		label := from.AddDate(0, i, 0).Format(MonthLabelLayout)
		points = append(points, models.ChartPoint{Label: label, Value: byMonth[label]})
	}
	return points
}
