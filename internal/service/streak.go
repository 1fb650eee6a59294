package service

import (
	"sort"
	"time"
)

// PracticeStreak computes the number of consecutive calendar days, ending
// today or yesterday, on which the patient has at least one practice record.
// It is a pure function over the full timestamp set; callers must not feed
// it the display-capped history.
//
// Timestamps are normalized to calendar dates in now's timezone, duplicates
// on a day collapse, and the walk stops at the first gap.
func PracticeStreak(now time.Time, timestamps []time.Time) int {
	if len(timestamps) == 0 {
		return 0
	}

	loc := now.Location()
	seen := make(map[time.Time]struct{}, len(timestamps))
	days := make([]time.Time, 0, len(timestamps))
	for _, ts := range timestamps {
		day := startOfDay(ts.In(loc))
		if _, ok := seen[day]; !ok {
			seen[day] = struct{}{}
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	today := startOfDay(now)
	yesterday := today.AddDate(0, 0, -1)

	// The streak anchors to today, falls back to yesterday, else is broken.
	var anchor time.Time
	if _, ok := seen[today]; ok {
		anchor = today
	} else if _, ok := seen[yesterday]; ok {
		anchor = yesterday
	} else {
		return 0
	}

	streak := 1
	for _, day := range days {
		if !day.Before(anchor) {
			continue
		}
		if day.Equal(anchor.AddDate(0, 0, -1)) {
			streak++
			anchor = day
		} else {
			break
		}
	}

	return streak
}

// startOfDay truncates a time to local midnight
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
