package internal

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/fitness"
	"github.com/2beens/fittrack/internal/fitness/notify"
	"github.com/2beens/fittrack/internal/middleware"
	"github.com/2beens/fittrack/internal/storage"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	apiTokenHash      string // bcrypt hash of the token guarding the mutating routes

	config    *config.Config
	backend   *storage.Backend
	readCache *storage.CachedStore // nil when the read cache is disabled
	store     storage.Store
	feed      *notify.Feed
	tracker   *fitness.Tracker

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	APITokenHash            string
	RedisPassword           string
	PostgresUser            string
	PostgresPassword        string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "fittrack")
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:       params.Config,
		apiTokenHash: params.APITokenHash,
		otelShutdown: otelShutdown,
	}

	backend, err := storage.Open(ctx, storage.OpenParams{
		Config:           params.Config,
		RedisPassword:    params.RedisPassword,
		PostgresUser:     params.PostgresUser,
		PostgresPassword: params.PostgresPassword,
		TracingEnabled:   params.HoneycombTracingEnabled,
	})
	if err != nil {
		otelShutdown()
		return nil, err
	}
	s.backend = backend

	var extraCollectors []prometheus.Collector
	if backend.DBPool != nil {
		extraCollectors = append(extraCollectors, db.NewPoolCollector(backend.DBPool, params.Config.PostgresDBName))
	}

	s.promRegistry = metrics.SetupPrometheus(extraCollectors...)
	s.metricsManager = metrics.NewManager("fittrack", "main", s.promRegistry)
	s.metricsManager.GaugeLifeSignal.Set(0)

	backingStore := backend.Store
	if params.Config.ReadCacheSizeMB > 0 {
		s.readCache = storage.NewCachedStore(backingStore, params.Config.ReadCacheSizeMB)
		backingStore = s.readCache
	}
	s.store = storage.NewInstrumentedStore(backingStore, s.metricsManager)

	s.feed = notify.NewFeed(params.Config.CelebrationsFeedSize)
	notifiers := notify.Multi{notify.LogNotifier{}, s.feed}
	if backend.RedisClient != nil && params.Config.CelebrationsChannel != "" {
		notifiers = append(notifiers, notify.NewRedisNotifier(backend.RedisClient, params.Config.CelebrationsChannel))
	}

	s.tracker = fitness.NewTracker(fitness.TrackerParams{
		Store:          s.store,
		Notifier:       notify.NewInstrumentedNotifier(notifiers, s.metricsManager),
		MetricsManager: s.metricsManager,
	})

	return s, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("fittrack-router"))

	handler := fitness.NewHandler(s.tracker, s.feed)

	var logWorkoutHandler http.Handler = http.HandlerFunc(handler.HandleLogWorkout)
	if s.backend.RedisClient != nil && s.config.RateLimitAllowedPerMin > 0 {
		reqRateLimiter := redis_rate.NewLimiter(s.backend.RedisClient)
		logWorkoutHandler = middleware.RateLimit(
			reqRateLimiter,
			"log-workout",
			s.config.RateLimitAllowedPerMin,
			s.metricsManager,
		)(logWorkoutHandler)
	}

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteResponse(w, pkg.ContentType.Text, "I'm OK, thanks", http.StatusOK)
	}).Methods("GET", "OPTIONS").Name("root")
	r.Handle("/workouts", logWorkoutHandler).Methods("POST", "OPTIONS").Name("log-workout")
	r.HandleFunc("/workouts", handler.HandleListWorkouts).Methods("GET", "OPTIONS").Name("list-workouts")
	r.HandleFunc("/dashboard", handler.HandleDashboard).Methods("GET", "OPTIONS").Name("dashboard")

	r.HandleFunc("/stats/streak", handler.HandleStreak).Methods("GET", "OPTIONS").Name("stats-streak")
	r.HandleFunc("/stats/weekly", handler.HandleWeekly).Methods("GET", "OPTIONS").Name("stats-weekly")
	r.HandleFunc("/stats/achievements", handler.HandleAchievements).Methods("GET", "OPTIONS").Name("stats-achievements")
	r.HandleFunc("/stats/charts", handler.HandleCharts).Methods("GET", "OPTIONS").Name("stats-charts")
	r.HandleFunc("/recommendations", handler.HandleRecommendations).Methods("GET", "OPTIONS").Name("recommendations")
	r.HandleFunc("/challenge", handler.HandleChallenge).Methods("GET", "OPTIONS").Name("challenge")
	r.HandleFunc("/records", handler.HandleRecords).Methods("GET", "OPTIONS").Name("records")

	r.HandleFunc("/goals", handler.HandleAddGoal).Methods("POST", "OPTIONS").Name("new-goal")
	r.HandleFunc("/goals", handler.HandleListGoals).Methods("GET", "OPTIONS").Name("list-goals")
	r.HandleFunc("/goals/active", handler.HandleActiveGoals).Methods("GET", "OPTIONS").Name("active-goals")
	r.HandleFunc("/goals/{id}/progress", handler.HandleGoalProgress).Methods("PUT", "OPTIONS").Name("goal-progress")
	r.HandleFunc("/goals/{id}", handler.HandleDeleteGoal).Methods("DELETE", "OPTIONS").Name("remove-goal")

	r.HandleFunc("/milestones", handler.HandleAddMilestoneGoal).Methods("POST", "OPTIONS").Name("new-milestone-goal")
	r.HandleFunc("/milestones", handler.HandleListMilestoneGoals).Methods("GET", "OPTIONS").Name("list-milestone-goals")
	r.HandleFunc("/milestones/active", handler.HandleActiveMilestoneGoals).Methods("GET", "OPTIONS").Name("active-milestone-goals")
	r.HandleFunc("/milestones/{id}", handler.HandleDeleteMilestoneGoal).Methods("DELETE", "OPTIONS").Name("remove-milestone-goal")

	r.HandleFunc("/celebrations", handler.HandleCelebrations).Methods("GET", "OPTIONS").Name("celebrations")
	r.HandleFunc("/timer/presets/{name}", handler.HandleTimerPreset).Methods("GET", "OPTIONS").Name("timer-preset")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.apiTokenHash)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) metricsRouterSetup() *mux.Router {
	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", otelhttp.NewHandler(
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
		"metrics",
	))
	return metricsRouter
}

func (s *Server) Serve(host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:              metricsAddr,
		Handler:           s.metricsRouterSetup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	// stop taking requests before the stores go away
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.readCache != nil {
		log.Debugf("read cache hit rate: %.2f", s.readCache.HitRate())
	}

	s.backend.Close()

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
