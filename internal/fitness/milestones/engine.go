package milestones

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/2beens/fittrack/internal/fitness/notify"
	"github.com/2beens/fittrack/internal/storage"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"
	log "github.com/sirupsen/logrus"
)

const CreatedMessage = "New monthly goal set! 🎯"

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=milestones_test

type notifier interface {
	Notify(ctx context.Context, signal notify.Signal) error
}

type Engine struct {
	store    storage.Store
	notifier notifier
	mutex    sync.Mutex

	// Now can be swapped in tests
	Now func() time.Time
}

func NewEngine(store storage.Store, notifier notifier) *Engine {
	return &Engine{
		store:    store,
		notifier: notifier,
		Now:      time.Now,
	}
}

func (e *Engine) Create(ctx context.Context, category Category, target int, deadline time.Time) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "milestonesEngine.create")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidGoal, category)
	}
	if target <= 0 {
		return nil, fmt.Errorf("%w: target must be positive, got %d", ErrInvalidGoal, target)
	}
	if deadline.IsZero() {
		return nil, fmt.Errorf("%w: deadline missing", ErrInvalidGoal)
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()

	goals, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	now := e.Now()
	var maxID int64
	for _, g := range goals {
		maxID = max(maxID, g.ID)
	}
	goal := Goal{
		ID:          pkg.NextMillisID(now, maxID),
		Category:    category,
		Target:      target,
		Current:     0,
		Deadline:    deadline,
		Milestones:  NewMilestones(target),
		CreatedAt:   now,
		LastUpdated: now,
	}
	goals = append(goals, goal)
	if err := e.save(ctx, goals); err != nil {
		return nil, err
	}

	notify.Send(ctx, e.notifier, notify.NewSignal(notify.KindGoalCreated, CreatedMessage, now))
	return &goal, nil
}

// UpdateProgress adds amount to every non-expired goal of the category and
// returns the milestones reached by this update, in ascending order per goal.
func (e *Engine) UpdateProgress(ctx context.Context, category Category, amount int) (_ []Milestone, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "milestonesEngine.updateProgress")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	e.mutex.Lock()
	defer e.mutex.Unlock()

	goals, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	now := e.Now()
	updated := false
	var reached []Milestone
	for i := range goals {
		g := &goals[i]
		if g.Category != category || g.Expired(now) {
			continue
		}

		g.Current += amount
		g.LastUpdated = now
		updated = true

		for j := range g.Milestones {
			m := &g.Milestones[j]
			if !m.Reached && g.Current >= m.Value {
				m.Reached = true
				reached = append(reached, *m)
			}
		}
	}

	if !updated {
		return nil, nil
	}
	if err := e.save(ctx, goals); err != nil {
		return nil, err
	}

	for _, m := range reached {
		notify.Send(ctx, e.notifier, notify.NewSignal(notify.KindMilestoneReached, ReachedMessage(m), now))
	}
	return reached, nil
}

// List returns all goals, expired ones included.
func (e *Engine) List(ctx context.Context) ([]Goal, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.load(ctx)
}

// Active returns the non-expired goals, closest deadline first.
func (e *Engine) Active(ctx context.Context) ([]Goal, error) {
	goals, err := e.List(ctx)
	if err != nil {
		return nil, err
	}

	now := e.Now()
	active := make([]Goal, 0, len(goals))
	for _, g := range goals {
		if !g.Expired(now) {
			active = append(active, g)
		}
	}
	slices.SortStableFunc(active, func(a, b Goal) int {
		return a.Deadline.Compare(b.Deadline)
	})
	return active, nil
}

// Delete removes the goal. An unknown id is not an error.
func (e *Engine) Delete(ctx context.Context, id int64) (bool, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	goals, err := e.load(ctx)
	if err != nil {
		return false, err
	}

	idx := slices.IndexFunc(goals, func(g Goal) bool { return g.ID == id })
	if idx < 0 {
		log.Debugf("milestone goal %d not found, nothing to delete", id)
		return false, nil
	}

	goals = slices.Delete(goals, idx, idx+1)
	if err := e.save(ctx, goals); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) load(ctx context.Context) ([]Goal, error) {
	var goals []Goal
	found, err := storage.GetJSON(ctx, e.store, storage.KeyMonthlyGoals, &goals)
	if err != nil {
		return nil, fmt.Errorf("load milestone goals: %w", err)
	}
	if !found {
		return []Goal{}, nil
	}
	return goals, nil
}

func (e *Engine) save(ctx context.Context, goals []Goal) error {
	if err := storage.SetJSON(ctx, e.store, storage.KeyMonthlyGoals, goals); err != nil {
		return fmt.Errorf("save milestone goals: %w", err)
	}
	return nil
}
