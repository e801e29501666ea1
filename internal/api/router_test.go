package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"sigs.k8s.io/yaml"

	specpkg "github.com/daap14/flightclub/api"
	"github.com/daap14/flightclub/internal/api"
	"github.com/daap14/flightclub/internal/metrics"
	"github.com/daap14/flightclub/internal/registration"
	"github.com/daap14/flightclub/internal/registration/mocks"
)

// openAPISpec is the minimal structure needed to extract paths from the spec.
type openAPISpec struct {
	Paths map[string]map[string]interface{} `json:"paths"`
}

type route struct {
	method string
	path   string
}

func newRouter(t *testing.T, deps registration.ServiceDeps) (*chi.Mux, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	deps.Metrics = metrics.New(reg)
	svc := registration.NewService(deps)
	return api.NewRouter(api.RouterDeps{
		Registrar:   svc,
		SinkChecker: svc,
		Version:     "test",
		OpenAPISpec: specpkg.OpenAPISpec,
		Gatherer:    reg,
	}), reg
}

func postRegister(t *testing.T, r http.Handler, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func individual() map[string]string {
	return map[string]string{
		"type":  "individual",
		"name":  "Alice",
		"roll":  "21CS001",
		"email": "alice@example.com",
		"phone": "9876543210",
	}
}

func TestRouter_AppliesRequestTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)

	var deadline time.Time
	sink.EXPECT().Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ registration.Record) error {
			deadline, _ = ctx.Deadline()
			return nil
		}).Times(1)

	svc := registration.NewService(registration.ServiceDeps{Sink: sink, Driver: "sheets"})
	r := api.NewRouter(api.RouterDeps{
		Registrar:      svc,
		SinkChecker:    svc,
		Version:        "test",
		RequestTimeout: 5 * time.Second,
		OpenAPISpec:    specpkg.OpenAPISpec,
		Gatherer:       prometheus.NewRegistry(),
	})

	w := postRegister(t, r, individual())

	require.Equal(t, http.StatusOK, w.Code)
	assert.WithinDuration(t, time.Now().Add(5*time.Second), deadline, time.Second)
}

func TestRouter_IndividualRegistration(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)
	sink.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	r, _ := newRouter(t, registration.ServiceDeps{Sink: sink, Driver: "sheets"})

	w := postRegister(t, r, individual())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_TeamSizeBoundary(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)
	sink.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	r, _ := newRouter(t, registration.ServiceDeps{Sink: sink, Driver: "sheets"})

	team := individual()
	team["type"] = "team"

	team["memberNames"] = "A,B"
	assert.Equal(t, http.StatusOK, postRegister(t, r, team).Code)

	team["memberNames"] = "A"
	assert.Equal(t, http.StatusBadRequest, postRegister(t, r, team).Code)
}

func TestRouter_MissingConfigurationNoAppend(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)
	sink.EXPECT().Append(gomock.Any(), gomock.Any()).Times(0)

	r, _ := newRouter(t, registration.ServiceDeps{Sink: sink, SinkErr: registration.ErrConfiguration, Driver: "sheets"})

	w := postRegister(t, r, individual())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, false, env["success"])
	assert.Equal(t, "Missing Google API environment variables", env["error"])
}

func TestRouter_HealthReportsUnconfiguredSink(t *testing.T) {
	r, _ := newRouter(t, registration.ServiceDeps{SinkErr: registration.ErrConfiguration, Driver: "sheets"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	data := env["data"].(map[string]interface{})
	assert.Equal(t, "degraded", data["status"])
	assert.Equal(t, "test", data["version"])
}

func TestRouter_MetricsExposeSubmissions(t *testing.T) {
	r, _ := newRouter(t, registration.ServiceDeps{SinkErr: registration.ErrConfiguration, Driver: "sheets"})

	postRegister(t, r, individual())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `flightclub_registrations_total{kind="individual",outcome="config_error"} 1`)
}

func TestRouter_UnknownRoute(t *testing.T) {
	r, _ := newRouter(t, registration.ServiceDeps{SinkErr: registration.ErrConfiguration})

	req := httptest.NewRequest(http.MethodGet, "/api/register", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestOpenAPISpec_RoutesCoverAllPaths(t *testing.T) {
	t.Parallel()

	specJSON, err := yaml.YAMLToJSON(specpkg.OpenAPISpec)
	require.NoError(t, err, "embedded spec must convert to JSON")

	var spec openAPISpec
	require.NoError(t, yaml.Unmarshal(specJSON, &spec), "spec JSON must unmarshal")

	specRoutes := extractSpecRoutes(spec)
	require.NotEmpty(t, specRoutes, "spec should define at least one route")

	router, _ := newRouter(t, registration.ServiceDeps{SinkErr: registration.ErrConfiguration})
	chiRoutes := extractChiRoutes(t, router)
	require.NotEmpty(t, chiRoutes)

	assert.Equal(t, specRoutes, chiRoutes)
	for _, sr := range specRoutes {
		t.Run(fmt.Sprintf("spec_%s_%s_has_Chi_route", sr.method, sr.path), func(t *testing.T) {
			assert.Contains(t, chiRoutes, sr)
		})
	}
}

func extractSpecRoutes(spec openAPISpec) []route {
	var routes []route
	for path, methods := range spec.Paths {
		for method := range methods {
			routes = append(routes, route{method: strings.ToUpper(method), path: path})
		}
	}
	sortRoutes(routes)
	return routes
}

func extractChiRoutes(t *testing.T, r *chi.Mux) []route {
	t.Helper()
	var routes []route
	walkFunc := func(method, routePath string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		normalized := strings.TrimRight(routePath, "/")
		if normalized == "" {
			normalized = "/"
		}
		routes = append(routes, route{method: method, path: normalized})
		return nil
	}
	require.NoError(t, chi.Walk(r, walkFunc), "chi.Walk should not error")
	sortRoutes(routes)
	return routes
}

func sortRoutes(routes []route) {
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].path == routes[j].path {
			return routes[i].method < routes[j].method
		}
		return routes[i].path < routes[j].path
	})
}
