package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/daap14/flightclub/internal/api/handler"
	"github.com/daap14/flightclub/internal/api/middleware"
)

// DefaultRequestTimeout bounds the handling time of a single request.
const DefaultRequestTimeout = 30 * time.Second

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Registrar      handler.Registrar
	SinkChecker    handler.SinkChecker
	Version        string
	MaxBodyBytes   int64
	RequestTimeout time.Duration
	OpenAPISpec    []byte
	Gatherer       prometheus.Gatherer
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Timeout(timeout))

	if deps.SinkChecker != nil {
		healthHandler := handler.NewHealthHandler(deps.SinkChecker, deps.Version)
		r.Get("/health", healthHandler.ServeHTTP)
	}

	if len(deps.OpenAPISpec) > 0 {
		openapiHandler := handler.NewOpenAPIHandler(deps.OpenAPISpec)
		r.Get("/openapi.json", openapiHandler.ServeHTTP)
	}

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	if deps.Registrar != nil {
		registerHandler := handler.NewRegisterHandler(deps.Registrar, deps.MaxBodyBytes)
		r.Post("/api/register", registerHandler.ServeHTTP)
	}

	return r
}
