package records

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/fittrack/internal/fitness/notify"
	"github.com/2beens/fittrack/internal/fitness/workouts"
	"github.com/2beens/fittrack/internal/storage"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
)

const NewRecordMessage = "🎉 New Personal Record!"

// Record holds the per workout type maxima and the number of workouts of that type.
type Record struct {
	LongestDuration int `json:"longestDuration"`
	MaxCalories     int `json:"maxCalories"`
	TotalWorkouts   int `json:"totalWorkouts"`
}

type Tracker struct {
	store    storage.Store
	notifier notify.Notifier
	mutex    sync.Mutex

	// Now can be swapped in tests
	Now func() time.Time
}

func NewTracker(store storage.Store, notifier notify.Notifier) *Tracker {
	return &Tracker{
		store:    store,
		notifier: notifier,
		Now:      time.Now,
	}
}

// Record folds the workout into its type's record. The returned flag is true when the
// workout ties or beats the longest duration or the max calories of its type.
func (t *Tracker) Record(ctx context.Context, w workouts.Workout) (_ Record, _ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "recordsTracker.record")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	t.mutex.Lock()
	defer t.mutex.Unlock()

	all, err := t.load(ctx)
	if err != nil {
		return Record{}, false, err
	}

	rec := all[w.Type]
	rec.LongestDuration = max(rec.LongestDuration, w.Duration)
	rec.MaxCalories = max(rec.MaxCalories, w.Calories)
	rec.TotalWorkouts++
	all[w.Type] = rec

	if err := storage.SetJSON(ctx, t.store, storage.KeyPersonalRecords, all); err != nil {
		return Record{}, false, fmt.Errorf("save personal records: %w", err)
	}

	isRecord := w.Duration == rec.LongestDuration || w.Calories == rec.MaxCalories
	if isRecord {
		notify.Send(ctx, t.notifier, notify.NewSignal(notify.KindPersonalRecord, NewRecordMessage, t.Now()))
	}

	return rec, isRecord, nil
}

func (t *Tracker) List(ctx context.Context) (map[string]Record, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.load(ctx)
}

func (t *Tracker) load(ctx context.Context) (map[string]Record, error) {
	var all map[string]Record
	found, err := storage.GetJSON(ctx, t.store, storage.KeyPersonalRecords, &all)
	if err != nil {
		return nil, fmt.Errorf("load personal records: %w", err)
	}
	if !found || all == nil {
		return make(map[string]Record), nil
	}
	return all, nil
}
