package stats

import (
	"time"

	"github.com/2beens/fittrack/internal/fitness/workouts"
)

type Summary struct {
	TotalWorkouts int           `json:"totalWorkouts"`
	TotalCalories int           `json:"totalCalories"`
	Streak        int           `json:"streak"`
	Weekly        WeeklyStats   `json:"weekly"`
	Achievements  []Achievement `json:"achievements"`
}

func Summarize(list []workouts.Workout, now time.Time) Summary {
	return Summary{
		TotalWorkouts: len(list),
		TotalCalories: workouts.TotalCalories(list),
		Streak:        Streak(list),
		Weekly:        Weekly(list, now),
		Achievements:  Achievements(list),
	}
}
