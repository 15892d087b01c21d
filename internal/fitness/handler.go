package fitness

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/fittrack/internal/fitness/goals"
	"github.com/2beens/fittrack/internal/fitness/milestones"
	"github.com/2beens/fittrack/internal/fitness/notify"
	"github.com/2beens/fittrack/internal/fitness/recommend"
	"github.com/2beens/fittrack/internal/fitness/stats"
	"github.com/2beens/fittrack/internal/fitness/timer"
	"github.com/2beens/fittrack/internal/fitness/workouts"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const defaultCelebrationsLimit = 20

type StreakResponse struct {
	Streak int `json:"streak"`
}

type AddGoalRequest struct {
	Title    string          `json:"title"`
	Target   int             `json:"target"`
	Deadline time.Time       `json:"deadline"`
	Type     workouts.Metric `json:"type"`
}

type GoalProgressRequest struct {
	Progress int `json:"progress"`
}

type AddMilestoneGoalRequest struct {
	Category milestones.Category `json:"category"`
	Target   int                 `json:"target"`
	Deadline time.Time           `json:"deadline"`
}

type UpdatedResponse struct {
	UpdatedID int64 `json:"updatedId"`
}

type DeletedResponse struct {
	DeletedID int64 `json:"deletedId"`
}

type PresetResponse struct {
	timer.Preset
	Total int    `json:"total"`
	Clock string `json:"clock"`
}

type Handler struct {
	tracker *Tracker
	feed    *notify.Feed
}

func NewHandler(tracker *Tracker, feed *notify.Feed) *Handler {
	return &Handler{
		tracker: tracker,
		feed:    feed,
	}
}

// errorStatus maps validation failures to 400, everything else is on us.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, workouts.ErrInvalidWorkout),
		errors.Is(err, goals.ErrInvalidGoal),
		errors.Is(err, milestones.ErrInvalidGoal):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func isJSONRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), pkg.ContentType.JSON)
}

func idFromPath(r *http.Request) (int64, error) {
	idStr := mux.Vars(r)["id"]
	if idStr == "" {
		return 0, errors.New("id empty")
	}
	return strconv.ParseInt(idStr, 10, 64)
}

func (handler *Handler) HandleLogWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fitness.logWorkout")
	defer span.End()

	if !isJSONRequest(r) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var workout workouts.Workout
	if err := json.NewDecoder(r.Body).Decode(&workout); err != nil {
		log.Tracef("log workout, unmarshal json params: %s", err)
		http.Error(w, "log workout failed", http.StatusBadRequest)
		return
	}

	result, err := handler.tracker.LogWorkout(ctx, workout)
	if result == nil {
		log.Debugf("failed to log workout [%s]: %s", workout.Type, err)
		http.Error(w, "error, failed to log workout: "+err.Error(), errorStatus(err))
		return
	}
	if err != nil {
		// the workout is stored, engine failures are already logged by the tracker
		span.RecordError(err)
	}

	pkg.WriteJSONResponse(w, result, http.StatusCreated)
}

func (handler *Handler) HandleListWorkouts(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fitness.listWorkouts")
	defer span.End()

	list, err := handler.tracker.Workouts().List(ctx)
	if err != nil {
		log.Errorf("failed to list workouts: %s", err)
		http.Error(w, "error, failed to list workouts", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, list, http.StatusOK)
}

func (handler *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fitness.dashboard")
	defer span.End()

	dashboard, err := handler.tracker.Dashboard(ctx, handler.tracker.Now())
	if err != nil {
		log.Errorf("failed to build dashboard: %s", err)
		http.Error(w, "error, failed to build dashboard", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, dashboard, http.StatusOK)
}

// handleWorkoutsView serves a read view computed from the full workout log.
func (handler *Handler) handleWorkoutsView(
	w http.ResponseWriter,
	r *http.Request,
	spanName string,
	view func(list []workouts.Workout, now time.Time) any,
) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), spanName)
	defer span.End()

	list, err := handler.tracker.Workouts().List(ctx)
	if err != nil {
		log.Errorf("%s: failed to list workouts: %s", spanName, err)
		http.Error(w, "error, failed to get workouts", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, view(list, handler.tracker.Now()), http.StatusOK)
}

func (handler *Handler) HandleStreak(w http.ResponseWriter, r *http.Request) {
	handler.handleWorkoutsView(w, r, "handler.fitness.streak", func(list []workouts.Workout, _ time.Time) any {
		return StreakResponse{Streak: stats.Streak(list)}
	})
}

func (handler *Handler) HandleWeekly(w http.ResponseWriter, r *http.Request) {
	handler.handleWorkoutsView(w, r, "handler.fitness.weekly", func(list []workouts.Workout, now time.Time) any {
		return stats.Weekly(list, now)
	})
}

func (handler *Handler) HandleAchievements(w http.ResponseWriter, r *http.Request) {
	handler.handleWorkoutsView(w, r, "handler.fitness.achievements", func(list []workouts.Workout, _ time.Time) any {
		return stats.Achievements(list)
	})
}

func (handler *Handler) HandleCharts(w http.ResponseWriter, r *http.Request) {
	handler.handleWorkoutsView(w, r, "handler.fitness.charts", func(list []workouts.Workout, now time.Time) any {
		return stats.BuildCharts(list, now)
	})
}

func (handler *Handler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	handler.handleWorkoutsView(w, r, "handler.fitness.recommendations", func(list []workouts.Workout, now time.Time) any {
		return recommend.Generate(list, now)
	})
}

func (handler *Handler) HandleChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fitness.challenge")
	defer span.End()

	c, err := handler.tracker.Challenges().Current(ctx)
	if err != nil {
		log.Errorf("failed to get current challenge: %s", err)
		http.Error(w, "error, failed to get challenge", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, c, http.StatusOK)
}

func (handler *Handler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fitness.records")
	defer span.End()

	all, err := handler.tracker.Records().List(ctx)
	if err != nil {
		log.Errorf("failed to list personal records: %s", err)
		http.Error(w, "error, failed to get records", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, all, http.StatusOK)
}

func (handler *Handler) HandleAddGoal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fitness.addGoal")
	defer span.End()

	if !isJSONRequest(r) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req AddGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("add goal, unmarshal json params: %s", err)
		http.Error(w, "add goal failed", http.StatusBadRequest)
		return
	}

	goal, err := handler.tracker.Goals().Add(ctx, req.Title, req.Target, req.Deadline, req.Type)
	if err != nil {
		log.Debugf("failed to add goal [%s]: %s", req.Title, err)
		http.Error(w, "error, failed to add goal: "+err.Error(), errorStatus(err))
		return
	}

	pkg.WriteJSONResponse(w, goal, http.StatusCreated)
}

func (handler *Handler) HandleListGoals(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fitness.listGoals")
	defer span.End()

	list, err := handler.tracker.Goals().List(ctx)
	if err != nil {
		log.Errorf("failed to list goals: %s", err)
		http.Error(w, "error, failed to list goals", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, list, http.StatusOK)
}

func (handler *Handler) HandleActiveGoals(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fitness.activeGoals")
	defer span.End()

	list, err := handler.tracker.Goals().Active(ctx)
	if err != nil {
		log.Errorf("failed to list active goals: %s", err)
		http.Error(w, "error, failed to list goals", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, list, http.StatusOK)
}

func (handler *Handler) HandleGoalProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fitness.goalProgress")
	defer span.End()

	id, err := idFromPath(r)
	if err != nil {
		http.Error(w, "error, invalid id", http.StatusBadRequest)
		return
	}

	var req GoalProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("goal progress, unmarshal json params: %s", err)
		http.Error(w, "update goal progress failed", http.StatusBadRequest)
		return
	}

	updated, err := handler.tracker.Goals().UpdateProgress(ctx, id, req.Progress)
	if err != nil {
		log.Errorf("failed to update goal %d progress: %s", id, err)
		http.Error(w, "error, failed to update goal progress", errorStatus(err))
		return
	}
	if !updated {
		http.Error(w, "error, goal not found", http.StatusNotFound)
		return
	}

	pkg.WriteJSONResponse(w, UpdatedResponse{UpdatedID: id}, http.StatusOK)
}

func (handler *Handler) HandleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fitness.deleteGoal")
	defer span.End()

	id, err := idFromPath(r)
	if err != nil {
		http.Error(w, "error, invalid id", http.StatusBadRequest)
		return
	}

	deleted, err := handler.tracker.Goals().Delete(ctx, id)
	if err != nil {
		log.Errorf("failed to delete goal %d: %s", id, err)
		http.Error(w, "error, failed to delete goal", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "error, goal not found", http.StatusNotFound)
		return
	}

	pkg.WriteJSONResponse(w, DeletedResponse{DeletedID: id}, http.StatusOK)
}

func (handler *Handler) HandleAddMilestoneGoal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fitness.addMilestoneGoal")
	defer span.End()

	if !isJSONRequest(r) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req AddMilestoneGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("add milestone goal, unmarshal json params: %s", err)
		http.Error(w, "add milestone goal failed", http.StatusBadRequest)
		return
	}

	goal, err := handler.tracker.Milestones().Create(ctx, req.Category, req.Target, req.Deadline)
	if err != nil {
		log.Debugf("failed to create milestone goal [%s]: %s", req.Category, err)
		http.Error(w, "error, failed to create milestone goal: "+err.Error(), errorStatus(err))
		return
	}

	pkg.WriteJSONResponse(w, NewMilestoneGoalView(goal, handler.tracker.Now()), http.StatusCreated)
}

func (handler *Handler) milestoneViews(list []milestones.Goal) []MilestoneGoalView {
	now := handler.tracker.Now()
	views := make([]MilestoneGoalView, 0, len(list))
	for i := range list {
		views = append(views, NewMilestoneGoalView(&list[i], now))
	}
	return views
}

func (handler *Handler) HandleListMilestoneGoals(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fitness.listMilestoneGoals")
	defer span.End()

	list, err := handler.tracker.Milestones().List(ctx)
	if err != nil {
		log.Errorf("failed to list milestone goals: %s", err)
		http.Error(w, "error, failed to list milestone goals", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, handler.milestoneViews(list), http.StatusOK)
}

func (handler *Handler) HandleActiveMilestoneGoals(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fitness.activeMilestoneGoals")
	defer span.End()

	list, err := handler.tracker.Milestones().Active(ctx)
	if err != nil {
		log.Errorf("failed to list active milestone goals: %s", err)
		http.Error(w, "error, failed to list milestone goals", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, handler.milestoneViews(list), http.StatusOK)
}

func (handler *Handler) HandleDeleteMilestoneGoal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fitness.deleteMilestoneGoal")
	defer span.End()

	id, err := idFromPath(r)
	if err != nil {
		http.Error(w, "error, invalid id", http.StatusBadRequest)
		return
	}

	deleted, err := handler.tracker.Milestones().Delete(ctx, id)
	if err != nil {
		log.Errorf("failed to delete milestone goal %d: %s", id, err)
		http.Error(w, "error, failed to delete milestone goal", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "error, milestone goal not found", http.StatusNotFound)
		return
	}

	pkg.WriteJSONResponse(w, DeletedResponse{DeletedID: id}, http.StatusOK)
}

func (handler *Handler) HandleCelebrations(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.fitness.celebrations")
	defer span.End()

	limit := defaultCelebrationsLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			http.Error(w, "error, limit must be a positive number", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	signals := []notify.Signal{}
	if handler.feed != nil {
		signals = handler.feed.Recent(limit)
	}

	pkg.WriteJSONResponse(w, signals, http.StatusOK)
}

func (handler *Handler) HandleTimerPreset(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.fitness.timerPreset")
	defer span.End()

	name := mux.Vars(r)["name"]
	preset, ok := timer.LookupPreset(name)
	if !ok {
		http.Error(w, "error, unknown preset, available: "+strings.Join(timer.PresetNames(), ", "), http.StatusNotFound)
		return
	}

	pkg.WriteJSONResponse(w, PresetResponse{
		Preset: preset,
		Total:  preset.Total(),
		Clock:  timer.FormatClock(preset.Total()),
	}, http.StatusOK)
}
