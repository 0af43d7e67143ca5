// Package http exposes the planner over a JSON HTTP API.
//
// The surface is small: one endpoint to plan, one to replan a stored
// session, and read-only views of the loaded domain. The OpenAPI document
// served at /openapi.yaml is the authoritative description of the wire
// types.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arborhq/arbor/api"
	"github.com/arborhq/arbor/internal/logging"
	"github.com/arborhq/arbor/internal/presentation/graph"
	"github.com/arborhq/arbor/pkg/codec"
	"github.com/arborhq/arbor/pkg/domain"
	"github.com/arborhq/arbor/pkg/ports"
	"github.com/arborhq/arbor/pkg/replan"
)

// Engine is the planning surface the server serves. The root package's
// Planner satisfies it.
type Engine interface {
	Plan(ctx context.Context, state domain.State, opts ...domain.PlanOption) (*domain.PlanResult, error)
	Domain() *domain.Domain
}

// PlanRequest is the body of POST /plan and POST /replan/{id}.
type PlanRequest struct {
	State    map[string]any `json:"state,omitempty"`
	Roots    []string       `json:"roots,omitempty"`
	Debug    bool           `json:"debug,omitempty"`
	MaxDepth int            `json:"max_depth,omitempty"`
}

func (r PlanRequest) options() []domain.PlanOption {
	var opts []domain.PlanOption
	if len(r.Roots) > 0 {
		opts = append(opts, domain.WithRoots(r.Roots...))
	}
	if r.Debug {
		opts = append(opts, domain.WithDebugTree())
	}
	if r.MaxDepth > 0 {
		opts = append(opts, domain.WithDepthLimit(r.MaxDepth))
	}
	return opts
}

// ReplanResponse reports which plan a session holds after a replanning
// round. Record is the held plan; Result is the freshly computed one,
// present whether or not it was accepted.
type ReplanResponse struct {
	Accepted bool               `json:"accepted"`
	Record   *ports.PlanRecord  `json:"record"`
	Result   *domain.PlanResult `json:"result,omitempty"`
}

// ErrorResponse is the JSON envelope for non-2xx answers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server handles HTTP requests against a planning engine.
type Server struct {
	engine   Engine
	replans  *replan.Planner
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithReplanner enables POST /replan/{id}, backed by p's session store.
func WithReplanner(p *replan.Planner) Option {
	return func(s *Server) { s.replans = p }
}

// WithGatherer sets the metrics gatherer behind GET /metrics. Defaults to
// the prometheus default gatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewHandler builds the router for engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		engine:   engine,
		gatherer: prometheus.DefaultGatherer,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)

	r.Post("/plan", s.handlePlan)
	r.Post("/replan/{id}", s.handleReplan)
	r.Get("/domain", s.handleDomain)
	r.Get("/domain/graph", s.handleGraph)
	r.Get("/healthz", s.handleHealth)
	r.Get("/openapi.yaml", s.handleOpenAPI)
	r.Get("/swagger", s.handleSwagger)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

// handlePlan computes a plan for the posted world state.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request body: %w", err))
		return
	}

	res, err := s.engine.Plan(r.Context(), domain.State(req.State), req.options()...)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// handleReplan replans the session named in the path. The stored plan is
// only replaced when the new one ranks at least as high.
func (s *Server) handleReplan(w http.ResponseWriter, r *http.Request) {
	if s.replans == nil {
		s.writeError(w, http.StatusServiceUnavailable, errors.New("no session store configured"))
		return
	}

	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request body: %w", err))
		return
	}

	id := chi.URLParam(r, "id")
	out, err := s.replans.Replan(r.Context(), id, domain.State(req.State), domain.NewPlanOptions(req.options()...))
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, ReplanResponse{
		Accepted: out.Accepted,
		Record:   out.Record,
		Result:   out.Result,
	})
}

// handleDomain exports the loaded domain as YAML.
func (s *Server) handleDomain(w http.ResponseWriter, r *http.Request) {
	data, err := codec.Marshal(s.engine.Domain())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/yaml")
	w.Write(data)
}

// handleGraph renders the task network as Mermaid source.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.Mermaid(s.engine.Domain(), nil))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	w.Write(api.OpenAPI)
}

func (s *Server) handleSwagger(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, swaggerHTML)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	} else {
		s.logger.Warn("request rejected", "status", status, "error", err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// statusFor maps planning errors to HTTP statuses: bad input is 400, a
// world with no plan is 422, anything else 500.
func statusFor(err error) int {
	var dec *domain.DecompositionError
	switch {
	case errors.Is(err, domain.ErrRootNotFound),
		errors.Is(err, domain.ErrRootNotCompound),
		errors.Is(err, domain.ErrBadRootTasks),
		errors.Is(err, domain.ErrStateInvalid):
		return http.StatusBadRequest
	case errors.As(err, &dec), errors.Is(err, domain.ErrDepthExceeded):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

const swaggerHTML = `
<!DOCTYPE html>
<html>
<head>
    <title>Arbor API</title>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`
