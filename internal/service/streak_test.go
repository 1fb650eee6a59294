package service

import (
	"testing"
	"time"
)

func TestPracticeStreak(t *testing.T) {
	now := time.Date(2026, time.March, 14, 15, 30, 0, 0, time.Local)
	daysAgo := func(n int) time.Time { return now.AddDate(0, 0, -n) }

	tests := []struct {
		name       string
		timestamps []time.Time
		want       int
	}{
		{
			name:       "no history",
			timestamps: nil,
			want:       0,
		},
		{
			name:       "single session today",
			timestamps: []time.Time{now},
			want:       1,
		},
		{
			name:       "single session yesterday",
			timestamps: []time.Time{daysAgo(1)},
			want:       1,
		},
		{
			name:       "no session today or yesterday",
			timestamps: []time.Time{daysAgo(2), daysAgo(3)},
			want:       0,
		},
		{
			name:       "run ending today with a gap",
			timestamps: []time.Time{now, daysAgo(1), daysAgo(2), daysAgo(5)},
			want:       3,
		},
		{
			name:       "run ending yesterday",
			timestamps: []time.Time{daysAgo(1), daysAgo(2), daysAgo(3)},
			want:       3,
		},
		{
			name: "multiple sessions per day do not inflate the streak",
			timestamps: []time.Time{
				now, now.Add(-2 * time.Hour), now.Add(-4 * time.Hour),
				daysAgo(1), daysAgo(1).Add(-1 * time.Hour),
			},
			want: 2,
		},
		{
			name:       "gap immediately before anchor",
			timestamps: []time.Time{now, daysAgo(2)},
			want:       1,
		},
		{
			name: "long unbroken run",
			timestamps: []time.Time{
				now, daysAgo(1), daysAgo(2), daysAgo(3), daysAgo(4),
				daysAgo(5), daysAgo(6), daysAgo(8),
			},
			want: 7,
		},
		{
			name:       "yesterday anchored run then gap",
			timestamps: []time.Time{daysAgo(1), daysAgo(2), daysAgo(4)},
			want:       2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PracticeStreak(now, tt.timestamps); got != tt.want {
				t.Errorf("PracticeStreak() = %d, want %d", got, tt.want)
			}
		})
	}
}

// A streak anchored at today must equal the length of the maximal run of
// consecutive dates ending at today, whatever the gap layout behind it.
func TestPracticeStreakMatchesMaximalRun(t *testing.T) {
	now := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.Local)

	// Date sets expressed as day offsets from today; every set contains 0.
	cases := [][]int{
		{0},
		{0, 1},
		{0, 1, 2, 3},
		{0, 1, 3, 4, 5},
		{0, 2, 3},
		{0, 1, 2, 4, 5, 6, 7},
	}

	for _, offsets := range cases {
		var timestamps []time.Time
		for _, off := range offsets {
			timestamps = append(timestamps, now.AddDate(0, 0, -off))
		}

		// Maximal consecutive run ending at offset 0.
		inSet := make(map[int]bool)
		for _, off := range offsets {
			inSet[off] = true
		}
		want := 0
		for off := 0; inSet[off]; off++ {
			want++
		}

		if got := PracticeStreak(now, timestamps); got != want {
			t.Errorf("offsets %v: PracticeStreak() = %d, want %d", offsets, got, want)
		}
		if got := PracticeStreak(now, timestamps); got < 1 {
			t.Errorf("offsets %v: streak %d, want >= 1 when today present", offsets, got)
		}
	}
}

func TestPracticeStreakNormalizesTimezones(t *testing.T) {
	now := time.Date(2026, time.March, 14, 1, 0, 0, 0, time.Local)

	// A UTC timestamp that falls on the same local calendar day as now.
	sameDay := now.Add(-30 * time.Minute).UTC()

	if got := PracticeStreak(now, []time.Time{sameDay}); got != 1 {
		t.Errorf("PracticeStreak() = %d, want 1 for same local day in UTC", got)
	}
}
