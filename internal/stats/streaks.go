// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package stats

import (
	"sort"
	"time"

	"github.com/tomtom215/occurlog/internal/models"
)

const day = 24 * time.Hour

// Streaks computes streak statistics from the days that have at least one
// occurrence. days may be unsorted and contain duplicates; days after today
// are ignored.
//
// The current streak is the run ending today, or ending yesterday when
// nothing has been logged yet today. The longest streak reports its first
// and last day; on a tie the most recent run wins.
func Streaks(days []time.Time, today time.Time) models.Streaks {
	result := models.Streaks{DaysSinceLast: -1}
	todayDate := Date(today)

	normalized := make([]time.Time, 0, len(days))
	for _, d := range days {
		d = Date(d)
		if d.After(todayDate) {
			continue
		}
		normalized = append(normalized, d)
	}
	if len(normalized) == 0 {
		return result
	}

	sort.Slice(normalized, func(i, j int) bool { return normalized[i].Before(normalized[j]) })
	unique := normalized[:1]
	for _, d := range normalized[1:] {
		if !d.Equal(unique[len(unique)-1]) {
			unique = append(unique, d)
		}
	}
	result.Total = len(unique)

	runStart, runLen := unique[0], 1
	record := func(end time.Time) {
		if runLen >= result.Longest {
			start, last := runStart, end
			result.Longest = runLen
			result.LongestStart = &start
			result.LongestEnd = &last
		}
	}
	for i := 1; i < len(unique); i++ {
		if unique[i].Sub(unique[i-1]) == day {
			runLen++
			continue
		}
		record(unique[i-1])
		runStart, runLen = unique[i], 1
	}
	last := unique[len(unique)-1]
	record(last)

	result.DaysSinceLast = int(todayDate.Sub(last) / day)
	if result.DaysSinceLast <= 1 {
		result.Current = runLen
	}
	return result
}
