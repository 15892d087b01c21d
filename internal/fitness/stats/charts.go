package stats

import (
	"slices"
	"time"

	"github.com/2beens/fittrack/internal/fitness/workouts"
)

type Point struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

type Charts struct {
	// Progress is the duration of every workout, oldest first.
	Progress []Point `json:"progress"`
	// Activity is the number of workouts per type.
	Activity []Point `json:"activity"`
	// Weekly counts this week's workouts per weekday, Sunday first.
	Weekly []Point `json:"weekly"`
}

func BuildCharts(list []workouts.Workout, now time.Time) Charts {
	sorted := slices.Clone(list)
	slices.SortStableFunc(sorted, func(a, b workouts.Workout) int {
		return a.Date.Compare(b.Date)
	})

	progress := make([]Point, 0, len(sorted))
	for _, w := range sorted {
		progress = append(progress, Point{
			Label: w.Date.In(now.Location()).Format(time.DateOnly),
			Value: w.Duration,
		})
	}

	activity := countByType(list)
	if activity == nil {
		activity = []Point{}
	}

	return Charts{
		Progress: progress,
		Activity: activity,
		Weekly:   weekdayCounts(list, now),
	}
}

// WeekStart is local midnight of the most recent Sunday, in now's location.
func WeekStart(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d-int(now.Weekday()), 0, 0, 0, 0, now.Location())
}

func weekdayCounts(list []workouts.Workout, now time.Time) []Point {
	weekStart := WeekStart(now)
	counts := make([]Point, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		counts[day].Label = day.String()[:3]
	}
	for _, w := range list {
		if w.Date.Before(weekStart) {
			continue
		}
		counts[w.Date.In(now.Location()).Weekday()].Value++
	}
	return counts
}
