package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// Keys under which the fitness collections are persisted.
const (
	KeyPersonalRecords  = "personal_records"
	KeyCurrentChallenge = "current_challenge"
	KeyMonthlyGoals     = "monthly_goals"
	KeyFitnessGoals     = "fitness_goals"
	KeyWorkouts         = "workouts"
)

// AllKeys lists every key the service persists.
var AllKeys = []string{
	KeyPersonalRecords,
	KeyCurrentChallenge,
	KeyMonthlyGoals,
	KeyFitnessGoals,
	KeyWorkouts,
}

// Store keeps whole-collection JSON snapshots by key.
// Every write replaces the previous value of the key.
type Store interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
