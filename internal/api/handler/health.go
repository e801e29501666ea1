package handler

import (
	"context"
	"net/http"

	"github.com/daap14/flightclub/internal/api/middleware"
	"github.com/daap14/flightclub/internal/api/response"
	"github.com/daap14/flightclub/internal/registration"
)

// SinkChecker reports the record sink status.
type SinkChecker interface {
	CheckSink(ctx context.Context) registration.SinkStatus
}

// HealthHandler handles the GET /health endpoint.
type HealthHandler struct {
	checker SinkChecker
	version string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(checker SinkChecker, version string) *HealthHandler {
	return &HealthHandler{
		checker: checker,
		version: version,
	}
}

type sinkStatus struct {
	Driver     string `json:"driver"`
	Configured bool   `json:"configured"`
	Reachable  bool   `json:"reachable"`
}

type healthData struct {
	Status  string     `json:"status"`
	Version string     `json:"version"`
	Sink    sinkStatus `json:"sink"`
}

// ServeHTTP handles the health check request. The service stays up without a
// usable sink and reports itself as degraded.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	s := h.checker.CheckSink(r.Context())

	status := "healthy"
	if !s.Configured || !s.Reachable {
		status = "degraded"
	}

	response.Success(w, http.StatusOK, healthData{
		Status:  status,
		Version: h.version,
		Sink: sinkStatus{
			Driver:     s.Driver,
			Configured: s.Configured,
			Reachable:  s.Reachable,
		},
	}, requestID)
}
