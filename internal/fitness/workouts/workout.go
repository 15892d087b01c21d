package workouts

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidWorkout = errors.New("invalid workout")

// Workout is immutable once logged. Duration is in minutes.
type Workout struct {
	Type     string    `json:"type"`
	Duration int       `json:"duration"`
	Calories int       `json:"calories"`
	Date     time.Time `json:"date"`
}

func (w Workout) Validate() error {
	if strings.TrimSpace(w.Type) == "" {
		return fmt.Errorf("%w: type missing", ErrInvalidWorkout)
	}
	if w.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidWorkout, w.Duration)
	}
	if w.Calories <= 0 {
		return fmt.Errorf("%w: calories must be positive, got %d", ErrInvalidWorkout, w.Calories)
	}
	return nil
}

func TotalCalories(list []Workout) int {
	total := 0
	for _, w := range list {
		total += w.Calories
	}
	return total
}
