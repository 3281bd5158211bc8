// ABOUTME: Calendar-day helpers and the consecutive-day training streak.
// ABOUTME: Days are taken in a caller-supplied location and compared as civil dates.
package training

import (
	"sort"
	"time"
)

// MaxStreakDays bounds the backward walk.
const MaxStreakDays = 365

// DayLayout is the key format of workout-day maps.
const DayLayout = "2006-01-02"

// civilDay maps t to midnight UTC of its calendar date in loc, so day
// arithmetic is free of DST shifts.
func civilDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WorkoutDays returns the distinct calendar dates of times, most recent first.
func WorkoutDays(times []time.Time, loc *time.Location) []time.Time {
	seen := make(map[time.Time]bool, len(times))
	days := make([]time.Time, 0, len(times))
	for _, t := range times {
		d := civilDay(t, loc)
		if seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	return days
}

// DayCounts counts sessions per calendar date, keyed by DayLayout.
func DayCounts(times []time.Time, loc *time.Location) map[string]int {
	counts := make(map[string]int)
	for _, t := range times {
		counts[civilDay(t, loc).Format(DayLayout)]++
	}
	return counts
}

// Streak counts consecutive training days ending today, or yesterday when
// today has no session yet. A most recent session older than yesterday
// means the streak is broken.
func Streak(times []time.Time, now time.Time, loc *time.Location) int {
	days := WorkoutDays(times, loc)
	if len(days) == 0 {
		return 0
	}

	today := civilDay(now, loc)
	yesterday := today.AddDate(0, 0, -1)
	if days[0].Before(yesterday) {
		return 0
	}

	present := make(map[time.Time]bool, len(days))
	for _, d := range days {
		present[d] = true
	}

	cursor := today
	if !present[today] {
		cursor = yesterday
	}

	streak := 0
	for i := 0; i < MaxStreakDays; i++ {
		if !present[cursor] {
			break
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}
