package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/2beens/fittrack/internal/fitness/notify"
	"github.com/2beens/fittrack/internal/fitness/timer"
	"github.com/2beens/fittrack/internal/fitness/workouts"
	"github.com/2beens/fittrack/internal/logging"
	"github.com/2beens/fittrack/internal/middleware"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const timeDoneMessage = "Time's up! 🔔"

func main() {
	presetName := flag.String("preset", "", "interval preset ["+strings.Join(timer.PresetNames(), " | ")+"]")
	minutes := flag.Int("minutes", 0, "plain countdown in minutes, used when no preset is given")
	workoutType := flag.String("log-type", "", "when set, log a workout of this type once the countdown finishes")
	calories := flag.Int("calories", 0, "calories of the logged workout")
	apiAddr := flag.String("api", "http://localhost:9000", "fittrack service address")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	closeLogs := logging.Setup(logging.LoggerSetupParams{
		LogToStdout: true,
		LogLevel:    *logLevel,
	})
	defer closeLogs()

	seconds := *minutes * 60
	if *presetName != "" {
		preset, ok := timer.LookupPreset(*presetName)
		if !ok {
			log.Fatalf("unknown preset [%s], available: %s", *presetName, strings.Join(timer.PresetNames(), ", "))
		}
		seconds = preset.Total()
		log.Infof("preset %s: %d x (%ds work / %ds rest)", preset.Name, preset.Rounds, preset.Work, preset.Rest)
	}
	if seconds <= 0 {
		log.Fatalln("nothing to count down, use -preset or -minutes")
	}
	if *workoutType != "" && *calories <= 0 {
		log.Fatalln("-calories must be positive when logging a workout")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	finished := false
	t := timer.New(func() {
		finished = true
		notify.Send(ctx, notify.LogNotifier{}, notify.NewSignal(notify.KindTimerDone, timeDoneMessage, time.Now()))
	})
	t.Reset(seconds)
	t.Start(ctx, func(left int) {
		fmt.Printf("\r %s ", timer.FormatClock(left))
	})
	t.Wait()
	fmt.Println()

	if !finished {
		log.Warnf("countdown stopped with %s left", timer.FormatClock(t.Left()))
		return
	}

	if *workoutType == "" {
		return
	}

	w := workouts.Workout{
		Type:     *workoutType,
		Duration: max(1, (seconds+30)/60),
		Calories: *calories,
		Date:     time.Now(),
	}
	if err := logWorkout(ctx, *apiAddr, os.Getenv("FITTRACK_API_TOKEN"), w); err != nil {
		log.Errorf("log workout: %s", err)
	}
}

func logWorkout(ctx context.Context, apiAddr, token string, w workouts.Workout) error {
	body, err := json.Marshal(w)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiAddr+"/workouts", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "fittimer/1.0")
	if token != "" {
		req.Header.Set(middleware.AuthTokenHeader, token)
	}

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   10 * time.Second,
	}
	resp, err := tracedHttpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}
	log.Infof("workout [%s] logged: %d min, %d kcal", w.Type, w.Duration, w.Calories)
	return nil
}
