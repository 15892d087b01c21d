package fitness

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/2beens/fittrack/internal/fitness/challenge"
	"github.com/2beens/fittrack/internal/fitness/goals"
	"github.com/2beens/fittrack/internal/fitness/milestones"
	"github.com/2beens/fittrack/internal/fitness/notify"
	"github.com/2beens/fittrack/internal/fitness/recommend"
	"github.com/2beens/fittrack/internal/fitness/records"
	"github.com/2beens/fittrack/internal/fitness/stats"
	"github.com/2beens/fittrack/internal/fitness/workouts"
	"github.com/2beens/fittrack/internal/storage"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

type TrackerParams struct {
	Store          storage.Store
	Notifier       notify.Notifier
	Rand           *rand.Rand
	MetricsManager *metrics.Manager
}

// Tracker wires the workout log to the engines that react on every logged workout.
type Tracker struct {
	workouts   *workouts.Repo
	challenges *challenge.Engine
	milestones *milestones.Engine
	records    *records.Tracker
	goals      *goals.Store

	metricsManager *metrics.Manager

	// Now can be swapped in tests
	Now func() time.Time
}

type LogResult struct {
	Workout           workouts.Workout       `json:"workout"`
	Challenge         *challenge.Challenge   `json:"challenge,omitempty"`
	ReachedMilestones []milestones.Milestone `json:"reachedMilestones"`
	PersonalRecord    bool                   `json:"personalRecord"`
	Record            *records.Record        `json:"record,omitempty"`
}

type MilestoneGoalView struct {
	milestones.Goal
	Icon     string              `json:"icon"`
	Progress milestones.Progress `json:"progress"`
}

type Dashboard struct {
	Summary          stats.Summary              `json:"summary"`
	Charts           stats.Charts               `json:"charts"`
	Recommendations  []recommend.Recommendation `json:"recommendations"`
	Challenge        *challenge.Challenge       `json:"challenge,omitempty"`
	ChallengePercent float64                    `json:"challengePercent"`
	Records          map[string]records.Record  `json:"records"`
	MilestoneGoals   []MilestoneGoalView        `json:"milestoneGoals"`
	Goals            []goals.Goal               `json:"goals"`
}

func NewTracker(params TrackerParams) *Tracker {
	notifier := params.Notifier
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &Tracker{
		workouts:       workouts.NewRepo(params.Store),
		challenges:     challenge.NewEngine(params.Store, notifier, params.Rand),
		milestones:     milestones.NewEngine(params.Store, notifier),
		records:        records.NewTracker(params.Store, notifier),
		goals:          goals.NewStore(params.Store),
		metricsManager: params.MetricsManager,
		Now:            time.Now,
	}
}

func (t *Tracker) Workouts() *workouts.Repo { return t.workouts }
func (t *Tracker) Challenges() *challenge.Engine { return t.challenges }
func (t *Tracker) Milestones() *milestones.Engine { return t.milestones }
func (t *Tracker) Records() *records.Tracker { return t.records }
func (t *Tracker) Goals() *goals.Store { return t.goals }

// SetClock swaps the time source of the tracker and every engine it owns.
func (t *Tracker) SetClock(now func() time.Time) {
	t.Now = now
	t.workouts.Now = now
	t.challenges.Now = now
	t.milestones.Now = now
	t.records.Now = now
	t.goals.Now = now
}

// LogWorkout stores the workout and feeds it to the engines. An engine failure does not
// undo the logged workout: the result is returned together with the combined engine errors.
func (t *Tracker) LogWorkout(ctx context.Context, w workouts.Workout) (_ *LogResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tracker.logWorkout")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	logged, err := t.workouts.Add(ctx, w)
	if err != nil {
		return nil, err
	}
	if t.metricsManager != nil {
		t.metricsManager.CounterWorkouts.WithLabelValues(logged.Type).Inc()
	}

	result := &LogResult{
		Workout:           logged,
		ReachedMilestones: []milestones.Milestone{},
	}

	var engineErrs error
	if c, err := t.challenges.Record(ctx, logged); err != nil {
		engineErrs = multierr.Append(engineErrs, fmt.Errorf("challenge: %w", err))
	} else {
		result.Challenge = c
	}

	progress := []struct {
		category milestones.Category
		amount   int
	}{
		{milestones.CategoryWorkouts, 1},
		{milestones.CategoryMinutes, logged.Duration},
		{milestones.CategoryCalories, logged.Calories},
	}
	for _, p := range progress {
		reached, err := t.milestones.UpdateProgress(ctx, p.category, p.amount)
		if err != nil {
			engineErrs = multierr.Append(engineErrs, fmt.Errorf("milestones %s: %w", p.category, err))
			continue
		}
		result.ReachedMilestones = append(result.ReachedMilestones, reached...)
	}

	rec, isRecord, err := t.records.Record(ctx, logged)
	if err != nil {
		engineErrs = multierr.Append(engineErrs, fmt.Errorf("records: %w", err))
	} else {
		result.Record = &rec
		result.PersonalRecord = isRecord
	}

	if engineErrs != nil {
		log.Errorf("workout [%s] logged, but engines failed: %s", logged.Type, engineErrs)
	}

	return result, engineErrs
}

func (t *Tracker) Dashboard(ctx context.Context, now time.Time) (_ *Dashboard, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tracker.dashboard")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	list, err := t.workouts.List(ctx)
	if err != nil {
		return nil, err
	}

	dashboard := &Dashboard{
		Summary:         stats.Summarize(list, now),
		Charts:          stats.BuildCharts(list, now),
		Recommendations: recommend.Generate(list, now),
	}

	if dashboard.Challenge, err = t.challenges.Current(ctx); err != nil {
		return nil, err
	}
	if dashboard.Challenge != nil {
		dashboard.ChallengePercent = dashboard.Challenge.Percent()
	}

	if dashboard.Records, err = t.records.List(ctx); err != nil {
		return nil, err
	}

	activeMilestones, err := t.milestones.Active(ctx)
	if err != nil {
		return nil, err
	}
	dashboard.MilestoneGoals = make([]MilestoneGoalView, 0, len(activeMilestones))
	for i := range activeMilestones {
		dashboard.MilestoneGoals = append(dashboard.MilestoneGoals, NewMilestoneGoalView(&activeMilestones[i], now))
	}

	if dashboard.Goals, err = t.goals.Active(ctx); err != nil {
		return nil, err
	}

	return dashboard, nil
}

func NewMilestoneGoalView(g *milestones.Goal, now time.Time) MilestoneGoalView {
	return MilestoneGoalView{
		Goal:     *g,
		Icon:     g.Category.Icon(),
		Progress: milestones.GoalProgress(g, now),
	}
}
