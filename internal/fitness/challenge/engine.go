package challenge

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/2beens/fittrack/internal/fitness/notify"
	"github.com/2beens/fittrack/internal/fitness/workouts"
	"github.com/2beens/fittrack/internal/storage"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	log "github.com/sirupsen/logrus"
)

const CompletedMessage = "🏆 Monthly Challenge Completed!"

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=challenge_test

type notifier interface {
	Notify(ctx context.Context, signal notify.Signal) error
}

// Engine keeps exactly one challenge per calendar month.
type Engine struct {
	store    storage.Store
	notifier notifier
	mutex    sync.Mutex
	// guarded by mutex, rand.Rand is not safe for concurrent use
	rng *rand.Rand

	// Now can be swapped in tests
	Now func() time.Time
}

func NewEngine(store storage.Store, notifier notifier, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		store:    store,
		notifier: notifier,
		rng:      rng,
		Now:      time.Now,
	}
}

// Load returns the challenge of the current month, replacing a missing,
// malformed or stale one with a freshly picked challenge.
func (e *Engine) Load(ctx context.Context) (_ *Challenge, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "challengeEngine.load")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	e.mutex.Lock()
	defer e.mutex.Unlock()

	return e.load(ctx, e.Now())
}

// Current is Load under the name used by read views.
func (e *Engine) Current(ctx context.Context) (*Challenge, error) {
	return e.Load(ctx)
}

// Record adds the workout to the current challenge, unless it is already completed.
func (e *Engine) Record(ctx context.Context, w workouts.Workout) (_ *Challenge, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "challengeEngine.record")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	e.mutex.Lock()
	defer e.mutex.Unlock()

	now := e.Now()
	c, err := e.load(ctx, now)
	if err != nil {
		return nil, err
	}
	if c.Completed {
		return c, nil
	}

	c.Progress += c.Type.Amount(w)
	justCompleted := c.Progress >= c.Target
	if justCompleted {
		c.Completed = true
	}

	if err := storage.SetJSON(ctx, e.store, storage.KeyCurrentChallenge, c); err != nil {
		return nil, fmt.Errorf("save challenge: %w", err)
	}

	if justCompleted {
		log.Infof("monthly challenge [%s] completed: %d/%d", c.Title, c.Progress, c.Target)
		notify.Send(ctx, e.notifier, notify.NewSignal(notify.KindChallengeCompleted, CompletedMessage, now))
	}

	return c, nil
}

func (e *Engine) load(ctx context.Context, now time.Time) (*Challenge, error) {
	c := &Challenge{}
	found, err := storage.GetJSON(ctx, e.store, storage.KeyCurrentChallenge, c)
	if err != nil {
		return nil, fmt.Errorf("load challenge: %w", err)
	}
	if found && c.Target > 0 && c.ActiveIn(now) {
		return c, nil
	}

	return e.rollover(ctx, now)
}

func (e *Engine) rollover(ctx context.Context, now time.Time) (*Challenge, error) {
	def := Catalog[e.rng.Intn(len(Catalog))]
	c := &Challenge{
		Title:     def.Title,
		Target:    def.Target,
		Type:      def.Type,
		Progress:  0,
		StartDate: now,
		Completed: false,
	}
	if err := storage.SetJSON(ctx, e.store, storage.KeyCurrentChallenge, c); err != nil {
		return nil, fmt.Errorf("save new challenge: %w", err)
	}
	log.Debugf("new monthly challenge: %s", c.Title)
	return c, nil
}
