package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wisbric/dutyplan/internal/store"
	"github.com/wisbric/dutyplan/internal/worker"
	"github.com/wisbric/dutyplan/pkg/duty"
	"github.com/wisbric/dutyplan/pkg/person"
	"github.com/wisbric/dutyplan/pkg/plan"
	"github.com/wisbric/dutyplan/pkg/scheduler"
)

// Server holds the HTTP server dependencies and exposes the thin
// read/trigger API over the duty plan.
type Server struct {
	Router    *chi.Mux
	Logger    *slog.Logger
	DB        *pgxpool.Pool
	Redis     *redis.Client
	Metrics   *prometheus.Registry
	Store     *store.Store
	Worker    *worker.Worker
	startedAt time.Time
}

// NewServer creates an HTTP server with middleware, health/metrics
// endpoints, and the plan/violations/trigger-run API.
func NewServer(logger *slog.Logger, db *pgxpool.Pool, rdb *redis.Client, metricsReg *prometheus.Registry, st *store.Store, w *worker.Worker) *Server {
	s := &Server{
		Router:    chi.NewRouter(),
		Logger:    logger,
		DB:        db,
		Redis:     rdb,
		Metrics:   metricsReg,
		Store:     st,
		Worker:    w,
		startedAt: time.Now(),
	}

	s.Router.Use(RequestID)
	s.Router.Use(Logger(logger))
	s.Router.Use(Metrics)
	s.Router.Use(middleware.Recoverer)

	s.Router.Get("/healthz", s.handleHealthz)
	s.Router.Get("/readyz", s.handleReadyz)
	s.Router.Handle("/metrics", promhttp.HandlerFor(metricsReg, promhttp.HandlerOpts{}))

	s.Router.Route("/api/v1", func(r chi.Router) {
		r.Get("/plan", s.handlePlan)
		r.Get("/violations", s.handleViolations)
		r.Post("/runs", s.handleTriggerRun)
	})

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	Respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.DB.Ping(ctx); err != nil {
		s.Logger.Error("readiness check: database ping failed", "error", err)
		RespondError(w, http.StatusServiceUnavailable, "unavailable", "database not ready")
		return
	}

	if err := s.Redis.Ping(ctx).Err(); err != nil {
		s.Logger.Error("readiness check: redis ping failed", "error", err)
		RespondError(w, http.StatusServiceUnavailable, "unavailable", "redis not ready")
		return
	}

	Respond(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handlePlan returns committed plan entries for the date range given by
// the "from" and "to" query parameters (YYYY-MM-DD, to exclusive).
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid_range", err.Error())
		return
	}

	entries, err := s.Store.PlanRange(r.Context(), from, to)
	if err != nil {
		s.Logger.Error("loading plan range", "error", err)
		RespondError(w, http.StatusInternalServerError, "internal", "failed to load plan")
		return
	}

	Respond(w, http.StatusOK, entries)
}

// handleViolations re-checks every MUST rule against the committed plan
// entries in the given date range.
func (s *Server) handleViolations(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid_range", err.Error())
		return
	}

	sctx, err := s.Store.LoadContext(r.Context(), nil)
	if err != nil {
		s.Logger.Error("loading context for violation check", "error", err)
		RespondError(w, http.StatusInternalServerError, "internal", "failed to load context")
		return
	}
	entries, err := s.Store.PlanRange(r.Context(), from, to)
	if err != nil {
		s.Logger.Error("loading plan range", "error", err)
		RespondError(w, http.StatusInternalServerError, "internal", "failed to load plan")
		return
	}

	seed := make(map[time.Time]map[duty.FormID]person.ID)
	for _, e := range entries {
		if seed[e.Date] == nil {
			seed[e.Date] = make(map[duty.FormID]person.ID)
		}
		seed[e.Date][e.Duty] = e.Person
	}

	violations := scheduler.CheckAll(sctx, plan.New(seed))
	Respond(w, http.StatusOK, violations)
}

// handleTriggerRun runs a planning cycle out of band, outside the
// worker's own schedule.
func (s *Server) handleTriggerRun(w http.ResponseWriter, r *http.Request) {
	if err := s.Worker.Run(r.Context()); err != nil {
		s.Logger.Error("triggered planning run failed", "error", err)
		RespondError(w, http.StatusInternalServerError, "internal", "planning run failed")
		return
	}
	Respond(w, http.StatusAccepted, map[string]string{"status": "completed"})
}

var errMissingRange = errors.New("from and to query parameters are required")

func parseRange(r *http.Request) (time.Time, time.Time, error) {
	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, errMissingRange
	}
	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}
