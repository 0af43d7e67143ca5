package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborhq/arbor/api"
	"github.com/arborhq/arbor/internal/planner"
	"github.com/arborhq/arbor/pkg/adapters/memory"
	"github.com/arborhq/arbor/pkg/adapters/metrics"
	"github.com/arborhq/arbor/pkg/domain"
	"github.com/arborhq/arbor/pkg/dsl"
	"github.com/arborhq/arbor/pkg/replan"
	"github.com/arborhq/arbor/pkg/session"
)

// testEngine adapts the planning engine's struct options to the variadic
// surface the server expects, the way the root package does.
type testEngine struct {
	eng *planner.Engine
	dom *domain.Domain
}

func (e *testEngine) Plan(ctx context.Context, state domain.State, opts ...domain.PlanOption) (*domain.PlanResult, error) {
	return e.eng.Plan(ctx, state, domain.NewPlanOptions(opts...))
}

func (e *testEngine) Domain() *domain.Domain { return e.dom }

func deliveryEngine(t *testing.T, opts ...planner.EngineOption) *testEngine {
	t.Helper()

	b := dsl.New("delivery").
		Allow("load_cargo", "units/load").
		Allow("fly_drone", "units/fly").
		Allow("drive_truck", "units/drive").
		Roots("deliver")
	b.Primitive("load").Action("load_cargo", map[string]any{"bay": 3}).ExpectSet(map[string]any{"cargo": "loaded"})
	b.Primitive("fly").Action("fly_drone", nil)
	b.Primitive("drive").Action("drive_truck", nil)
	c := b.Compound("deliver")
	c.Method("by_air").Priority(10).WhenExpr("fuel > 20").Tasks("load", "fly")
	c.Method("by_road").Priority(100).WhenExpr("fuel > 0").Tasks("load", "drive")

	d, err := b.Build()
	require.NoError(t, err)
	return &testEngine{eng: planner.NewEngine(d, opts...), dom: d}
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req, _ := http.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	req, _ := http.NewRequest("GET", path, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestServer_PlanRoundTrip(t *testing.T) {
	handler := NewHandler(deliveryEngine(t))

	rr := postJSON(t, handler, "/plan", PlanRequest{State: map[string]any{"fuel": 50}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var res domain.PlanResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, []string{"units/load", "units/fly"}, res.Plan.Units())
	require.Len(t, res.MTR, 1)
	assert.Equal(t, "by_air", res.MTR[0].Method)
	assert.Equal(t, "loaded", res.State["cargo"])
	assert.Empty(t, res.Debug)
}

func TestServer_PlanDebugTree(t *testing.T) {
	handler := NewHandler(deliveryEngine(t))

	rr := postJSON(t, handler, "/plan", PlanRequest{State: map[string]any{"fuel": 50}, Debug: true})
	require.Equal(t, http.StatusOK, rr.Code)

	var res domain.PlanResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.NotEmpty(t, res.Debug)
	assert.Equal(t, "deliver", res.Debug[0].Task)
}

func TestServer_PlanUnknownRoot(t *testing.T) {
	handler := NewHandler(deliveryEngine(t))

	rr := postJSON(t, handler, "/plan", PlanRequest{
		State: map[string]any{"fuel": 50},
		Roots: []string{"nope"},
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "root task not found")
}

func TestServer_PlanFailureIsUnprocessable(t *testing.T) {
	handler := NewHandler(deliveryEngine(t))

	// No method's conditions hold when the tank is empty.
	rr := postJSON(t, handler, "/plan", PlanRequest{State: map[string]any{"fuel": 0}})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "deliver")
}

func TestServer_PlanRejectsBadBody(t *testing.T) {
	handler := NewHandler(deliveryEngine(t))

	req, _ := http.NewRequest("POST", "/plan", bytes.NewReader([]byte("{")))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestServer_ReplanWithoutStore(t *testing.T) {
	handler := NewHandler(deliveryEngine(t))

	rr := postJSON(t, handler, "/replan/mission-1", PlanRequest{State: map[string]any{"fuel": 50}})
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestServer_ReplanRoundTrip(t *testing.T) {
	engine := deliveryEngine(t)
	sessions := session.New(memory.NewStore())
	replanner := replan.New(sessions, engine.eng.Plan, replan.WithDomainName("delivery"))
	handler := NewHandler(engine, WithReplanner(replanner))

	rr := postJSON(t, handler, "/replan/mission-1", PlanRequest{State: map[string]any{"fuel": 50}})
	require.Equal(t, http.StatusOK, rr.Code)

	var first ReplanResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &first))
	assert.True(t, first.Accepted)
	require.NotNil(t, first.Record)
	assert.Equal(t, "mission-1", first.Record.ID)
	assert.Equal(t, "delivery", first.Record.Domain)
	require.Len(t, first.Record.MTR, 1)
	assert.Equal(t, "by_air", first.Record.MTR[0].Method)

	// With the tank nearly empty only by_road applies, and it cannot match
	// the stored by_air plan. The round fails and the record survives.
	rr = postJSON(t, handler, "/replan/mission-1", PlanRequest{State: map[string]any{"fuel": 5}})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = postJSON(t, handler, "/replan/mission-1", PlanRequest{State: map[string]any{"fuel": 50}})
	require.Equal(t, http.StatusOK, rr.Code)

	var third ReplanResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &third))
	assert.True(t, third.Accepted)
	assert.Equal(t, "by_air", third.Record.MTR[0].Method)
	assert.Equal(t, first.Record.CreatedAt, third.Record.CreatedAt)
}

func TestServer_DomainExport(t *testing.T) {
	handler := NewHandler(deliveryEngine(t))

	rr := get(t, handler, "/domain")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/yaml", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "name: delivery")
	assert.Contains(t, rr.Body.String(), "by_air")
}

func TestServer_DomainGraph(t *testing.T) {
	handler := NewHandler(deliveryEngine(t))

	rr := get(t, handler, "/domain/graph")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "graph TD")
	assert.Contains(t, rr.Body.String(), `deliver(("deliver"))`)
}

func TestServer_Health(t *testing.T) {
	handler := NewHandler(deliveryEngine(t))

	rr := get(t, handler, "/healthz")
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestServer_OpenAPIDocument(t *testing.T) {
	handler := NewHandler(deliveryEngine(t))

	rr := get(t, handler, "/openapi.yaml")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/yaml", rr.Header().Get("Content-Type"))
	assert.Equal(t, api.OpenAPI, rr.Body.Bytes())
}

func TestServer_MetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	collectors, err := metrics.New(reg)
	require.NoError(t, err)

	engine := deliveryEngine(t, planner.WithHooks(collectors.Hooks()))
	handler := NewHandler(engine, WithGatherer(reg))

	rr := postJSON(t, handler, "/plan", PlanRequest{State: map[string]any{"fuel": 50}})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = get(t, handler, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `arbor_planner_plans_total{result="success"} 1`)
}

func TestServer_CORSPreflight(t *testing.T) {
	handler := NewHandler(deliveryEngine(t))

	req, _ := http.NewRequest("OPTIONS", "/plan", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
