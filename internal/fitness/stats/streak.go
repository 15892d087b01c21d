package stats

import (
	"slices"
	"time"

	"github.com/2beens/fittrack/internal/fitness/workouts"
)

// Streak walks the workouts from the most recent one backwards.
// The first workout seeds the streak with 1, a one day gap extends it,
// a bigger gap resets it to 0 and a same day workout leaves it unchanged.
func Streak(list []workouts.Workout) int {
	if len(list) == 0 {
		return 0
	}

	sorted := slices.Clone(list)
	slices.SortStableFunc(sorted, func(a, b workouts.Workout) int {
		return b.Date.Compare(a.Date)
	})

	streak := 1
	for i := 1; i < len(sorted); i++ {
		gap := dayNumber(sorted[i-1].Date) - dayNumber(sorted[i].Date)
		switch {
		case gap == 1:
			streak++
		case gap > 1:
			streak = 0
		}
	}

	return streak
}

// dayNumber is the calendar day of t (in its own location) counted from the unix epoch.
func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / int64(24*time.Hour/time.Second)
}
