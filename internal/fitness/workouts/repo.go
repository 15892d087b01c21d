package workouts

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/2beens/fittrack/internal/storage"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
)

// Repo is the append-only workout log.
type Repo struct {
	store storage.Store
	mutex sync.Mutex

	// Now can be swapped in tests
	Now func() time.Time
}

func NewRepo(store storage.Store) *Repo {
	return &Repo{
		store: store,
		Now:   time.Now,
	}
}

// Add validates and appends the workout. A zero date is set to now.
func (r *Repo) Add(ctx context.Context, w Workout) (_ Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutsRepo.add")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	w.Type = strings.TrimSpace(w.Type)
	if err := w.Validate(); err != nil {
		return Workout{}, err
	}
	if w.Date.IsZero() {
		w.Date = r.Now()
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	list, err := r.load(ctx)
	if err != nil {
		return Workout{}, err
	}
	list = append(list, w)
	if err := storage.SetJSON(ctx, r.store, storage.KeyWorkouts, list); err != nil {
		return Workout{}, fmt.Errorf("save workouts: %w", err)
	}

	return w, nil
}

// List returns the workouts in insertion order.
func (r *Repo) List(ctx context.Context) ([]Workout, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.load(ctx)
}

func (r *Repo) load(ctx context.Context) ([]Workout, error) {
	var list []Workout
	found, err := storage.GetJSON(ctx, r.store, storage.KeyWorkouts, &list)
	if err != nil {
		return nil, fmt.Errorf("load workouts: %w", err)
	}
	if !found {
		return []Workout{}, nil
	}
	return list, nil
}
