// Package mcp exposes the planner to language-model tooling over the
// Model Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/arborhq/arbor"
	"github.com/arborhq/arbor/internal/logging"
	"github.com/arborhq/arbor/internal/presentation/graph"
	"github.com/arborhq/arbor/internal/validator"
	"github.com/arborhq/arbor/pkg/codec"
	"github.com/arborhq/arbor/pkg/domain"
	"github.com/arborhq/arbor/pkg/ports"
	"github.com/arborhq/arbor/pkg/replan"
)

// PlanResponse aligns with the HTTP API's plan result schema so both
// adapters speak the same shapes.
type PlanResponse struct {
	Plan  []domain.Step       `json:"plan" jsonschema_description:"Ordered execution units"`
	MTR   domain.MTR          `json:"mtr" jsonschema_description:"Method choices behind the plan, most recent first"`
	State domain.State        `json:"state" jsonschema_description:"Projected world state after every step"`
	Debug []*domain.DebugNode `json:"debug,omitempty" jsonschema_description:"Decomposition tree, present when debug was requested"`
}

// ReplanResponse reports which plan a session holds after a replanning
// round.
type ReplanResponse struct {
	Accepted bool               `json:"accepted" jsonschema_description:"Whether the fresh plan replaced the stored one"`
	Record   *ports.PlanRecord  `json:"record" jsonschema_description:"The plan the session holds after the call"`
	Result   *domain.PlanResult `json:"result,omitempty" jsonschema_description:"The freshly computed plan"`
}

// DomainInfo summarizes the loaded domain for introspection.
type DomainInfo struct {
	Name      string            `json:"name"`
	Roots     []string          `json:"roots,omitempty" jsonschema_description:"Default root tasks"`
	Workflows map[string]string `json:"workflows,omitempty" jsonschema_description:"Action name to execution unit"`
	Schema    map[string]string `json:"state_schema,omitempty"`
	Tasks     []TaskInfo        `json:"tasks"`
}

// TaskInfo is one task in a DomainInfo.
type TaskInfo struct {
	Name       string       `json:"name"`
	Type       string       `json:"type"`
	Unit       string       `json:"unit,omitempty" jsonschema_description:"Execution unit, primitives only"`
	Cost       float64      `json:"cost,omitempty"`
	Duration   float64      `json:"duration,omitempty"`
	Background bool         `json:"background,omitempty"`
	Methods    []MethodInfo `json:"methods,omitempty"`
}

// MethodInfo is one decomposition recipe in a TaskInfo.
type MethodInfo struct {
	Name     string   `json:"name"`
	Priority int      `json:"priority"`
	Subtasks []string `json:"subtasks,omitempty"`
}

// Engine is the planning surface the server exposes as tools.
type Engine interface {
	Plan(ctx context.Context, state domain.State, opts ...domain.PlanOption) (*domain.PlanResult, error)
	Domain() *domain.Domain
}

// Server wraps a planning engine and exposes it as an MCP server.
type Server struct {
	engine    Engine
	replans   *replan.Planner
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithReplanner registers the replan tool, backed by p's session store.
func WithReplanner(p *replan.Planner) Option {
	return func(s *Server) { s.replans = p }
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates an MCP server over engine.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine: engine,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer("arbor-mcp", strings.TrimSpace(arbor.Version))
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio serves on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on the given port until ctx is canceled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening", "transport", "sse", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	planTool := mcp.NewTool("plan",
		mcp.WithDescription("Compute a plan for a world state. Returns ordered execution units plus the method decisions behind them."),
		mcp.WithString("state", mcp.Description("JSON object with the world state (optional)")),
		mcp.WithString("roots", mcp.Description("JSON array of root task names (optional, defaults to the domain's roots)")),
		mcp.WithBoolean("debug", mcp.Description("Include the decomposition tree in the response")),
		mcp.WithNumber("max_depth", mcp.Description("Decomposition depth limit (optional)")),
		mcp.WithOutputSchema[PlanResponse](),
	)
	s.mcpServer.AddTool(planTool, mcp.NewStructuredToolHandler(s.handlePlan))

	if s.replans != nil {
		replanTool := mcp.NewTool("replan",
			mcp.WithDescription("Replan a stored session against a new world state. The stored plan is replaced only when the new one ranks at least as high."),
			mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID of the stored plan")),
			mcp.WithString("state", mcp.Description("JSON object with the new world state")),
			mcp.WithString("roots", mcp.Description("JSON array of root task names (optional)")),
			mcp.WithOutputSchema[ReplanResponse](),
		)
		s.mcpServer.AddTool(replanTool, mcp.NewStructuredToolHandler(s.handleReplan))
	}

	inspectTool := mcp.NewTool("inspect_domain",
		mcp.WithDescription("Describe the loaded domain: tasks, methods, priorities, action units."),
		mcp.WithOutputSchema[DomainInfo](),
	)
	s.mcpServer.AddTool(inspectTool, mcp.NewStructuredToolHandler(s.handleInspect))

	validateTool := mcp.NewTool("validate_domain",
		mcp.WithDescription("Check the loaded domain for structural problems: dangling references, compounds that can never decompose, unreachable tasks."),
		mcp.WithOutputSchema[validator.Report](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))
}

// Handler methods for structured tools

func (s *Server) handlePlan(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (PlanResponse, error) {
	state, err := stateArg(args)
	if err != nil {
		return PlanResponse{}, err
	}
	opts, err := planOptions(args)
	if err != nil {
		return PlanResponse{}, err
	}

	res, err := s.engine.Plan(ctx, state, opts...)
	if err != nil {
		s.logger.Warn("MCP plan failed", "error", err)
		return PlanResponse{}, fmt.Errorf("planning failed: %w", err)
	}

	return PlanResponse{
		Plan:  res.Plan,
		MTR:   res.MTR,
		State: res.State,
		Debug: res.Debug,
	}, nil
}

func (s *Server) handleReplan(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ReplanResponse, error) {
	id, _ := args["session_id"].(string)
	if id == "" {
		return ReplanResponse{}, fmt.Errorf("session_id is required")
	}

	state, err := stateArg(args)
	if err != nil {
		return ReplanResponse{}, err
	}
	opts, err := planOptions(args)
	if err != nil {
		return ReplanResponse{}, err
	}

	out, err := s.replans.Replan(ctx, id, state, domain.NewPlanOptions(opts...))
	if err != nil {
		s.logger.Warn("MCP replan failed", "session_id", id, "error", err)
		return ReplanResponse{}, fmt.Errorf("replanning failed: %w", err)
	}

	return ReplanResponse{
		Accepted: out.Accepted,
		Record:   out.Record,
		Result:   out.Result,
	}, nil
}

func (s *Server) handleInspect(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (DomainInfo, error) {
	d := s.engine.Domain()

	info := DomainInfo{
		Name:      d.Name(),
		Roots:     d.DefaultRoots(),
		Workflows: d.Workflows(),
		Schema:    d.StateSchema(),
	}
	for _, name := range d.TaskNames() {
		task, _ := d.Task(name)
		ti := TaskInfo{
			Name:       task.Name,
			Type:       task.Type,
			Cost:       task.Cost,
			Duration:   task.Duration,
			Background: task.Background,
		}
		if task.Action != nil {
			if unit, ok := d.Workflow(task.Action.Name); ok {
				ti.Unit = unit
			}
		}
		for _, m := range task.Methods {
			ti.Methods = append(ti.Methods, MethodInfo{
				Name:     m.Name,
				Priority: m.Priority,
				Subtasks: m.Subtasks,
			})
		}
		info.Tasks = append(info.Tasks, ti)
	}
	return info, nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (validator.Report, error) {
	return *validator.Check(s.engine.Domain()), nil
}

// stateArg parses the optional state argument, a JSON object string.
func stateArg(args map[string]any) (domain.State, error) {
	raw, ok := args["state"].(string)
	if !ok || raw == "" {
		return domain.State{}, nil
	}
	var state map[string]any
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("state must be a JSON object: %w", err)
	}
	return domain.State(state), nil
}

func planOptions(args map[string]any) ([]domain.PlanOption, error) {
	var opts []domain.PlanOption
	if raw, ok := args["roots"].(string); ok && raw != "" {
		var roots []string
		if err := json.Unmarshal([]byte(raw), &roots); err != nil {
			return nil, fmt.Errorf("roots must be a JSON array of task names: %w", err)
		}
		opts = append(opts, domain.WithRoots(roots...))
	}
	if debug, ok := args["debug"].(bool); ok && debug {
		opts = append(opts, domain.WithDebugTree())
	}
	if depth, ok := args["max_depth"].(float64); ok && depth > 0 {
		opts = append(opts, domain.WithDepthLimit(int(depth)))
	}
	return opts, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("arbor://domain/graph", "Task Network Graph",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "arbor://domain/graph",
				MIMEType: "text/plain",
				Text:     graph.Mermaid(s.engine.Domain(), nil),
			},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource("arbor://domain", "Domain Definition",
		mcp.WithMIMEType("text/yaml"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := codec.Marshal(s.engine.Domain())
		if err != nil {
			return nil, fmt.Errorf("exporting domain: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "arbor://domain",
				MIMEType: "text/yaml",
				Text:     string(data),
			},
		}, nil
	})
}
