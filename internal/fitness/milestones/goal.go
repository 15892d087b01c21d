package milestones

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrInvalidGoal = errors.New("invalid milestone goal")

type Category string

const (
	CategoryWorkouts Category = "workouts"
	CategoryMinutes  Category = "minutes"
	CategoryCalories Category = "calories"
	CategoryDistance Category = "distance"
)

var categoryIcons = map[Category]string{
	CategoryWorkouts: "💪",
	CategoryCalories: "🔥",
	CategoryMinutes:  "⏱️",
	CategoryDistance: "🏃",
}

func (c Category) Valid() bool {
	_, ok := categoryIcons[c]
	return ok
}

func (c Category) Icon() string {
	if icon, ok := categoryIcons[c]; ok {
		return icon
	}
	return "🎯"
}

type Milestone struct {
	Percentage int    `json:"percentage"`
	Value      int    `json:"value"`
	Reached    bool   `json:"reached"`
	Reward     string `json:"reward"`
}

type Goal struct {
	ID          int64       `json:"id"`
	Category    Category    `json:"category"`
	Target      int         `json:"target"`
	Current     int         `json:"current"`
	Deadline    time.Time   `json:"deadline"`
	Milestones  []Milestone `json:"milestones"`
	CreatedAt   time.Time   `json:"createdAt"`
	LastUpdated time.Time   `json:"lastUpdated"`
}

// Expired goals stay stored but no longer take progress.
func (g *Goal) Expired(now time.Time) bool {
	return g.Deadline.Before(now)
}

var checkpoints = []struct {
	percentage int
	reward     string
}{
	{25, "🌱 Getting Started"},
	{50, "🌿 Halfway There"},
	{75, "🌳 Almost Done"},
	{100, "🏆 Goal Achieved"},
}

// NewMilestones computes the four checkpoints of a target, rounding half away from zero.
func NewMilestones(target int) []Milestone {
	milestones := make([]Milestone, 0, len(checkpoints))
	for _, cp := range checkpoints {
		milestones = append(milestones, Milestone{
			Percentage: cp.percentage,
			Value:      int(math.Round(float64(target) * float64(cp.percentage) / 100)),
			Reward:     cp.reward,
		})
	}
	return milestones
}

func ReachedMessage(m Milestone) string {
	return fmt.Sprintf("Milestone Reached: %s 🎉", m.Reward)
}

type Progress struct {
	Percent  float64 `json:"percent"`
	DaysLeft int     `json:"daysLeft"`
}

// GoalProgress is the display view of a goal. DaysLeft goes negative once expired.
func GoalProgress(g *Goal, now time.Time) Progress {
	p := Progress{
		DaysLeft: int(math.Ceil(g.Deadline.Sub(now).Hours() / 24)),
	}
	if g.Target > 0 {
		p.Percent = math.Min(float64(g.Current)/float64(g.Target)*100, 100)
	}
	return p
}
