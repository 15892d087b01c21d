package stats

import (
	"github.com/2beens/fittrack/internal/fitness/workouts"
)

type Achievement struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type badge struct {
	achievement Achievement
	unlocked    func(totalWorkouts, streak, totalCalories int) bool
}

var badges = []badge{
	{
		achievement: Achievement{Title: "Getting Started", Description: "Complete 10 workouts"},
		unlocked:    func(total, _, _ int) bool { return total >= 10 },
	},
	{
		achievement: Achievement{Title: "Fitness Enthusiast", Description: "Complete 50 workouts"},
		unlocked:    func(total, _, _ int) bool { return total >= 50 },
	},
	{
		achievement: Achievement{Title: "Week Warrior", Description: "7-day workout streak"},
		unlocked:    func(_, streak, _ int) bool { return streak >= 7 },
	},
	{
		achievement: Achievement{Title: "Calorie Crusher", Description: "Burn 5000 total calories"},
		unlocked:    func(_, _, calories int) bool { return calories >= 5000 },
	},
}

// Achievements recomputes the unlocked badges from the whole history. Nothing is persisted.
func Achievements(list []workouts.Workout) []Achievement {
	total := len(list)
	streak := Streak(list)
	calories := workouts.TotalCalories(list)

	achievements := []Achievement{}
	for _, b := range badges {
		if b.unlocked(total, streak, calories) {
			achievements = append(achievements, b.achievement)
		}
	}
	return achievements
}
