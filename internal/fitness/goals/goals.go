package goals

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/2beens/fittrack/internal/fitness/workouts"
	"github.com/2beens/fittrack/internal/storage"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidGoal = errors.New("invalid goal")

type Goal struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	Target    int             `json:"target"`
	Current   int             `json:"current"`
	Deadline  time.Time       `json:"deadline"`
	Type      workouts.Metric `json:"type"`
	Completed bool            `json:"completed"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Store keeps the user defined goals. Completion is always derived from current >= target.
type Store struct {
	store storage.Store
	mutex sync.Mutex

	// Now can be swapped in tests
	Now func() time.Time
}

func NewStore(store storage.Store) *Store {
	return &Store{
		store: store,
		Now:   time.Now,
	}
}

func (s *Store) Add(
	ctx context.Context,
	title string,
	target int,
	deadline time.Time,
	metric workouts.Metric,
) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "goalsStore.add")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title missing", ErrInvalidGoal)
	}
	if target <= 0 {
		return nil, fmt.Errorf("%w: target must be positive, got %d", ErrInvalidGoal, target)
	}
	if deadline.IsZero() {
		return nil, fmt.Errorf("%w: deadline missing", ErrInvalidGoal)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	var maxID int64
	for _, g := range list {
		maxID = max(maxID, g.ID)
	}
	goal := Goal{
		ID:        pkg.NextMillisID(now, maxID),
		Title:     title,
		Target:    target,
		Current:   0,
		Deadline:  deadline,
		Type:      metric,
		Completed: false,
		CreatedAt: now,
	}
	list = append(list, goal)
	if err := s.save(ctx, list); err != nil {
		return nil, err
	}

	return &goal, nil
}

// UpdateProgress sets the current value of the goal. Returns false when the goal does not exist.
func (s *Store) UpdateProgress(ctx context.Context, id int64, progress int) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return false, err
	}

	idx := slices.IndexFunc(list, func(g Goal) bool { return g.ID == id })
	if idx < 0 {
		log.Debugf("goal %d not found, progress not updated", id)
		return false, nil
	}

	list[idx].Current = progress
	list[idx].Completed = progress >= list[idx].Target

	return true, s.save(ctx, list)
}

// Delete removes the goal. Returns false when the goal does not exist.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return false, err
	}

	idx := slices.IndexFunc(list, func(g Goal) bool { return g.ID == id })
	if idx < 0 {
		return false, nil
	}

	return true, s.save(ctx, slices.Delete(list, idx, idx+1))
}

func (s *Store) List(ctx context.Context) ([]Goal, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.load(ctx)
}

// Active returns the goals not completed yet. Deadlines are not enforced.
func (s *Store) Active(ctx context.Context) ([]Goal, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(list, func(g Goal) bool { return g.Completed }), nil
}

func (s *Store) load(ctx context.Context) ([]Goal, error) {
	var list []Goal
	found, err := storage.GetJSON(ctx, s.store, storage.KeyFitnessGoals, &list)
	if err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}
	if !found {
		return []Goal{}, nil
	}
	return list, nil
}

func (s *Store) save(ctx context.Context, list []Goal) error {
	if err := storage.SetJSON(ctx, s.store, storage.KeyFitnessGoals, list); err != nil {
		return fmt.Errorf("save goals: %w", err)
	}
	return nil
}
