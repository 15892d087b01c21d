package recommend

import (
	"time"

	"github.com/2beens/fittrack/internal/fitness/workouts"
)

const (
	TypeFrequency = "frequency"
	TypeVariety   = "variety"
	TypeDuration  = "duration"

	recentCount        = 5
	minWeeklyWorkouts  = 3
	minDistinctTypes   = 2
	minAvgDurationMins = 30
	week               = 7 * 24 * time.Hour
)

type Recommendation struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Icon    string `json:"icon"`
}

var (
	frequency = Recommendation{
		Type:    TypeFrequency,
		Message: "Try to get at least 3 workouts this week for optimal results!",
		Icon:    "🎯",
	}
	variety = Recommendation{
		Type:    TypeVariety,
		Message: "Mix up your routine! Try a different type of workout next time.",
		Icon:    "🔄",
	}
	duration = Recommendation{
		Type:    TypeDuration,
		Message: "Consider gradually increasing your workout duration to 30+ minutes.",
		Icon:    "⏱️",
	}
)

// Generate looks at the last five logged workouts (in log order) and at the
// trailing week. The checks are independent of each other.
func Generate(list []workouts.Workout, now time.Time) []Recommendation {
	recs := []Recommendation{}

	weekAgo := now.Add(-week)
	thisWeek := 0
	for _, w := range list {
		if !w.Date.Before(weekAgo) {
			thisWeek++
		}
	}
	if thisWeek < minWeeklyWorkouts {
		recs = append(recs, frequency)
	}

	recent := list[max(0, len(list)-recentCount):]

	types := make(map[string]struct{}, len(recent))
	for _, w := range recent {
		types[w.Type] = struct{}{}
	}
	if len(types) < minDistinctTypes {
		recs = append(recs, variety)
	}

	// no average without workouts
	if len(recent) > 0 {
		total := 0
		for _, w := range recent {
			total += w.Duration
		}
		if float64(total)/float64(len(recent)) < minAvgDurationMins {
			recs = append(recs, duration)
		}
	}

	return recs
}
