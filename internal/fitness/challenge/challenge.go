package challenge

import (
	"math"
	"time"

	"github.com/2beens/fittrack/internal/fitness/workouts"
)

type Challenge struct {
	Title     string          `json:"title"`
	Target    int             `json:"target"`
	Type      workouts.Metric `json:"type"`
	Progress  int             `json:"progress"`
	StartDate time.Time       `json:"startDate"`
	Completed bool            `json:"completed"`
}

// Percent is the progress towards the target, capped at 100.
func (c *Challenge) Percent() float64 {
	if c.Target <= 0 {
		return 0
	}
	return math.Min(float64(c.Progress)/float64(c.Target)*100, 100)
}

// ActiveIn reports whether the challenge was started in the same calendar month as now.
func (c *Challenge) ActiveIn(now time.Time) bool {
	started := c.StartDate.In(now.Location())
	return started.Year() == now.Year() && started.Month() == now.Month()
}

type Definition struct {
	Title  string
	Target int
	Type   workouts.Metric
}

var Catalog = []Definition{
	{Title: "20 Workouts Challenge", Target: 20, Type: workouts.MetricCount},
	{Title: "1000 Minute Challenge", Target: 1000, Type: workouts.MetricDuration},
	{Title: "5000 Calorie Challenge", Target: 5000, Type: workouts.MetricCalories},
}
