package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/execution-hub/supervisor/internal/application/health"
	"github.com/execution-hub/supervisor/internal/application/orchestrator"
	"github.com/execution-hub/supervisor/internal/domain/worker"
	"github.com/execution-hub/supervisor/internal/infrastructure/sse"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	orchestrator *orchestrator.Orchestrator
	registry     worker.Registry
	monitor      *health.Monitor
	sseHub       *sse.Hub
	name         string
	timeout      time.Duration
	logger       zerolog.Logger
}

func NewServer(
	orch *orchestrator.Orchestrator,
	registry worker.Registry,
	monitor *health.Monitor,
	sseHub *sse.Hub,
	name string,
	timeout time.Duration,
	logger zerolog.Logger,
) *Server {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Server{
		orchestrator: orch,
		registry:     registry,
		monitor:      monitor,
		sseHub:       sseHub,
		name:         name,
		timeout:      timeout,
		logger:       logger.With().Str("service", "http").Logger(),
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.callerContext)

	r.Get("/health", s.health)

	r.Route("/v1", func(r chi.Router) {
		// The event stream is long-lived and must not be cut by the request timeout.
		r.Get("/events", s.sseEndpoint)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.timeout))

			r.Route("/supervisor", func(r chi.Router) {
				r.Post("/request", s.submitRequest)
				r.Post("/identify-intent", s.identifyIntent)
			})

			r.Route("/workers", func(r chi.Router) {
				r.Get("/", s.listWorkers)
				r.Post("/health-sweep", s.sweepWorkers)
				r.Get("/{workerId}", s.getWorker)
				r.Post("/{workerId}/health-check", s.checkWorker)
			})
		})
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": s.name,
		"workers": len(s.registry.All()),
	})
}

// Helpers
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func contextFromRequest(r *http.Request) context.Context {
	return r.Context()
}

func parseLimitOffset(r *http.Request, defaultLimit, maxLimit int) (int, int) {
	limit := defaultLimit
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			limit = l
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil {
			offset = o
		}
	}
	if limit <= 0 || limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
