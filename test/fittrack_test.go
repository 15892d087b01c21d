//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/2beens/fittrack/internal/fitness"
	"github.com/2beens/fittrack/internal/fitness/notify"
	"github.com/2beens/fittrack/internal/fitness/workouts"
	"github.com/2beens/fittrack/internal/middleware"
	"github.com/2beens/fittrack/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) doRequest(ctx context.Context, method, path, body string, withToken bool) (int, []byte) {
	t := s.T()

	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, bodyReader)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if withToken {
		req.Header.Set(middleware.AuthTokenHeader, testToken)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, respBytes
}

func (s *IntegrationTestSuite) TestLogWorkoutPersistsInPostgres() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	t := s.T()

	status, _ := s.doRequest(ctx, "POST", "/workouts", `{"type":"rowing","duration":40,"calories":380}`, false)
	require.Equal(t, http.StatusUnauthorized, status)

	status, body := s.doRequest(ctx, "POST", "/workouts", `{"type":"rowing","duration":40,"calories":380}`, true)
	require.Equal(t, http.StatusCreated, status, string(body))

	var result fitness.LogResult
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, "rowing", result.Workout.Type)
	assert.True(t, result.PersonalRecord)

	// straight from the table, past the read cache
	var raw string
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM fittrack_kv WHERE key = $1`, storage.KeyWorkouts).Scan(&raw)
	require.NoError(t, err)
	var stored []workouts.Workout
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	require.NotEmpty(t, stored)
	assert.Equal(t, "rowing", stored[len(stored)-1].Type)

	status, body = s.doRequest(ctx, "GET", "/dashboard", "", false)
	require.Equal(t, http.StatusOK, status)
	var dashboard fitness.Dashboard
	require.NoError(t, json.Unmarshal(body, &dashboard))
	assert.GreaterOrEqual(t, dashboard.Summary.TotalWorkouts, 1)
	assert.Contains(t, dashboard.Records, "rowing")

	status, body = s.doRequest(ctx, "GET", "/celebrations", "", false)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), string(notify.KindPersonalRecord))
}

func (s *IntegrationTestSuite) TestGoalsAndMilestonesFlow() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	t := s.T()

	deadline := time.Now().Add(14 * 24 * time.Hour).UTC().Format(time.RFC3339)
	status, body := s.doRequest(ctx, "POST", "/milestones", `{"category":"minutes","target":60,"deadline":"`+deadline+`"}`, true)
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = s.doRequest(ctx, "POST", "/goals", `{"title":"Two sessions","target":2,"deadline":"`+deadline+`"}`, true)
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = s.doRequest(ctx, "POST", "/workouts", `{"type":"hiit","duration":30,"calories":300}`, true)
	require.Equal(t, http.StatusCreated, status, string(body))
	var result fitness.LogResult
	require.NoError(t, json.Unmarshal(body, &result))
	// 15 and 30 of 60 minutes
	require.Len(t, result.ReachedMilestones, 2)
	assert.Equal(t, 25, result.ReachedMilestones[0].Percentage)
	assert.Equal(t, 50, result.ReachedMilestones[1].Percentage)

	status, body = s.doRequest(ctx, "GET", "/milestones/active", "", false)
	require.Equal(t, http.StatusOK, status)
	var views []fitness.MilestoneGoalView
	require.NoError(t, json.Unmarshal(body, &views))
	require.NotEmpty(t, views)
	assert.Equal(t, "⏱️", views[0].Icon)
}

func (s *IntegrationTestSuite) TestRedisStoreContract() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	t := s.T()

	store := storage.NewRedisStore(s.redisClient, "contract::")

	_, err := store.Get(ctx, storage.KeyWorkouts)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Set(ctx, storage.KeyWorkouts, []byte(`[{"type":"yoga"}]`)))
	value, err := store.Get(ctx, storage.KeyWorkouts)
	require.NoError(t, err)
	assert.Equal(t, `[{"type":"yoga"}]`, string(value))

	require.NoError(t, store.Delete(ctx, storage.KeyWorkouts))
	_, err = store.Get(ctx, storage.KeyWorkouts)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func (s *IntegrationTestSuite) TestRedisNotifierPublishes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	t := s.T()

	channel := "fittrack-test:notifier"
	pubSub := s.redisClient.Subscribe(ctx, channel)
	defer pubSub.Close()
	_, err := pubSub.Receive(ctx)
	require.NoError(t, err)

	notifier := notify.NewRedisNotifier(s.redisClient, channel)
	signal := notify.NewSignal(notify.KindChallengeCompleted, "done", time.Now().UTC().Truncate(time.Second))
	require.NoError(t, notifier.Notify(ctx, signal))

	msg, err := pubSub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var received notify.Signal
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &received))
	assert.Equal(t, signal.Kind, received.Kind)
	assert.Equal(t, signal.Message, received.Message)
	assert.True(t, signal.CreatedAt.Equal(received.CreatedAt))
}
