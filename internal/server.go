package internal

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/mlukic/fittrack/internal/auth"
	"github.com/mlukic/fittrack/internal/calories"
	"github.com/mlukic/fittrack/internal/config"
	"github.com/mlukic/fittrack/internal/foodlookup"
	"github.com/mlukic/fittrack/internal/middleware"
	"github.com/mlukic/fittrack/internal/profile"
	"github.com/mlukic/fittrack/internal/telemetry/metrics"
	"github.com/mlukic/fittrack/internal/telemetry/tracing"
	"github.com/mlukic/fittrack/internal/workout"
	"github.com/mlukic/fittrack/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config       *config.Config
	plansCatalog *workout.PlansCatalog

	redisClient  *redis.Client
	loginChecker *auth.LoginChecker
	authService  *auth.Service

	calorieLedger  *calories.Ledger
	workoutEngine  *workout.Engine
	profileManager *profile.Manager
	foodApi        *foodlookup.Api

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("fittrack", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0) // will be set to 1 when all is set and ran

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	authService := auth.NewService(auth.DefaultSessionTTL, rdb)
	go func() {
		for range time.Tick(time.Hour * 8) {
			authService.ScanAndClean(ctx)
		}
	}()

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "fittrack-backend", rdb)
	if err != nil {
		return nil, err
	}

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	s := &Server{
		config:      params.Config,
		versionInfo: params.VersionInfo,

		redisClient:  rdb,
		authService:  authService,
		loginChecker: auth.NewLoginChecker(auth.DefaultSessionTTL, rdb),

		calorieLedger:  calories.NewLedger(calories.NewRedisStore(rdb)),
		profileManager: profile.NewManager(profile.NewRedisStore(rdb)),
		foodApi: foodlookup.NewApi(
			params.Config.FoodApiBaseURL,
			tracedHttpClient,
			rdb,
			time.Duration(params.Config.FoodCacheTTLMinutes)*time.Minute,
		),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}

	plansCsvFile, err := os.Open(params.Config.WorkoutPlansCsvPath)
	if err != nil {
		return nil, fmt.Errorf("open workout plans file: %w", err)
	}
	defer func() {
		if err := plansCsvFile.Close(); err != nil {
			log.Warnf("close workout plans csv file: %s", err)
		}
	}()

	s.plansCatalog, err = workout.NewPlansCatalog(csv.NewReader(plansCsvFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create workout plans catalog: %s", err)
	}
	s.workoutEngine = workout.NewEngine(workout.NewRedisStore(rdb), s.plansCatalog)

	return s, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("fittrack-router"))

	r.HandleFunc("/", s.handleRoot).Methods("GET")
	r.HandleFunc("/version", s.handleVersion).Methods("GET")

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	authHandler := auth.NewHandler(s.authService)
	authRouter := r.PathPrefix("/a").Subrouter()
	authRouter.HandleFunc("/login", authHandler.HandleLogin).Methods("POST", "OPTIONS")
	authRouter.HandleFunc("/signup", authHandler.HandleSignup).Methods("POST", "OPTIONS")
	authRouter.HandleFunc("/logout", authHandler.HandleLogout).Methods("GET", "OPTIONS")
	authRouter.Use(middleware.RateLimit(
		reqRateLimiter, "login", s.config.LoginRateLimitAllowedPerMin, s.metricsManager,
	))

	caloriesHandler := calories.NewHandler(s.calorieLedger, s.metricsManager)
	r.HandleFunc("/calories", caloriesHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-calorie-entry")
	r.HandleFunc("/calories/{id}", caloriesHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-calorie-entry")
	r.HandleFunc("/calories/{id}", caloriesHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("remove-calorie-entry")
	r.HandleFunc("/calories/list/{date}", caloriesHandler.HandleList).Methods("GET", "OPTIONS").Name("list-calorie-entries")
	r.HandleFunc("/calories/summary/{date}", caloriesHandler.HandleSummary).Methods("GET", "OPTIONS").Name("daily-summary")
	r.HandleFunc("/calories/goals", caloriesHandler.HandleGetGoals).Methods("GET", "OPTIONS").Name("get-calorie-goals")
	r.HandleFunc("/calories/goals", caloriesHandler.HandleUpdateGoals).Methods("PUT", "OPTIONS").Name("update-calorie-goals")

	workoutHandler := workout.NewHandler(s.workoutEngine, s.plansCatalog, s.metricsManager)
	r.HandleFunc("/workout/start", workoutHandler.HandleStart).Methods("POST", "OPTIONS").Name("start-workout")
	r.HandleFunc("/workout/current", workoutHandler.HandleCurrent).Methods("GET", "OPTIONS").Name("current-workout")
	r.HandleFunc("/workout/complete", workoutHandler.HandleComplete).Methods("POST", "OPTIONS").Name("complete-workout")
	r.HandleFunc("/workout/exercise", workoutHandler.HandleAddExercise).Methods("POST", "OPTIONS").Name("new-exercise")
	r.HandleFunc("/workout/exercise/{id}", workoutHandler.HandleUpdateExercise).Methods("PUT", "OPTIONS").Name("update-exercise")
	r.HandleFunc("/workout/exercise/{id}", workoutHandler.HandleRemoveExercise).Methods("DELETE", "OPTIONS").Name("remove-exercise")
	r.HandleFunc("/workout/history", workoutHandler.HandleHistory).Methods("GET", "OPTIONS").Name("workout-history")
	r.HandleFunc("/workout/plans", workoutHandler.HandlePlans).Methods("GET", "OPTIONS").Name("workout-plans")

	profileHandler := profile.NewHandler(s.profileManager, s.metricsManager)
	r.HandleFunc("/profile", profileHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-profile")
	r.HandleFunc("/profile", profileHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-profile")

	foodHandler := foodlookup.NewHandler(s.foodApi, s.metricsManager)
	r.HandleFunc("/food/barcode/{barcode}", foodHandler.HandleLookupBarcode).Methods("GET", "OPTIONS").Name("barcode-lookup")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.loginChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, s.versionInfo)
}

func (s *Server) Serve(_ context.Context, host string, port int) {
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

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
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

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
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
