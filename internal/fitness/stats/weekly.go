package stats

import (
	"time"

	"github.com/2beens/fittrack/internal/fitness/workouts"
)

const Week = 7 * 24 * time.Hour

type WeeklyStats struct {
	TotalWorkouts  int     `json:"totalWorkouts"`
	TotalCalories  int     `json:"totalCalories"`
	AvgDuration    float64 `json:"avgDuration"`
	MostCommonType string  `json:"mostCommonType"`
}

// InLastWeek returns the workouts dated at or after now minus seven days, in input order.
func InLastWeek(list []workouts.Workout, now time.Time) []workouts.Workout {
	weekAgo := now.Add(-Week)
	var recent []workouts.Workout
	for _, w := range list {
		if !w.Date.Before(weekAgo) {
			recent = append(recent, w)
		}
	}
	return recent
}

// Weekly aggregates the trailing seven days. Ties for the most common type
// go to the type seen first.
func Weekly(list []workouts.Workout, now time.Time) WeeklyStats {
	recent := InLastWeek(list, now)
	if len(recent) == 0 {
		return WeeklyStats{}
	}

	stats := WeeklyStats{
		TotalWorkouts: len(recent),
	}
	totalDuration := 0
	for _, w := range recent {
		stats.TotalCalories += w.Calories
		totalDuration += w.Duration
	}
	stats.AvgDuration = float64(totalDuration) / float64(len(recent))

	bestCount := 0
	for _, tc := range countByType(recent) {
		if tc.Value > bestCount {
			bestCount = tc.Value
			stats.MostCommonType = tc.Label
		}
	}

	return stats
}

// countByType counts workouts per type, keeping the order in which types first appear.
func countByType(list []workouts.Workout) []Point {
	index := make(map[string]int)
	var counts []Point
	for _, w := range list {
		i, ok := index[w.Type]
		if !ok {
			i = len(counts)
			index[w.Type] = i
			counts = append(counts, Point{Label: w.Type})
		}
		counts[i].Value++
	}
	return counts
}
