package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/daap14/flightclub/internal/api/middleware"
	"github.com/daap14/flightclub/internal/api/response"
	"github.com/daap14/flightclub/internal/registration"
)

// DefaultMaxBodyBytes bounds the registration request body.
const DefaultMaxBodyBytes int64 = 1 << 20

// Registrar submits validated registrations to the record sink.
type Registrar interface {
	Submit(ctx context.Context, req registration.Request) (registration.Record, error)
}

// registerRequest accepts the canonical comma-separated member fields and,
// for older clients, a members array.
type registerRequest struct {
	registration.Request
	Members []registration.Member `json:"members,omitempty"`
}

// RegisterHandler handles POST /api/register.
type RegisterHandler struct {
	registrar    Registrar
	maxBodyBytes int64
}

// NewRegisterHandler creates a new RegisterHandler. A non-positive
// maxBodyBytes selects DefaultMaxBodyBytes.
func NewRegisterHandler(registrar Registrar, maxBodyBytes int64) *RegisterHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &RegisterHandler{registrar: registrar, maxBodyBytes: maxBodyBytes}
}

// ServeHTTP decodes a registration, submits it and reports the outcome.
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	var body registerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Err(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "Request body is too large", requestID)
			return
		}
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	req := body.Request
	if !req.HasMemberFields() && len(body.Members) > 0 {
		req = req.WithMembers(body.Members)
	}

	if _, err := h.registrar.Submit(r.Context(), req); err != nil {
		h.writeError(w, err, requestID)
		return
	}

	response.Success(w, http.StatusOK, nil, requestID)
}

func (h *RegisterHandler) writeError(w http.ResponseWriter, err error, requestID string) {
	var validationErr *registration.ValidationError
	if errors.As(err, &validationErr) {
		slog.Info("registration rejected", "error", err, "requestId", requestID)
		response.ErrWithDetails(w, http.StatusBadRequest, validationCode(validationErr), validationErr.Message, validationErr.Fields, requestID)
		return
	}

	slog.Error("registration failed", "error", err, "requestId", requestID)

	if errors.Is(err, registration.ErrConfiguration) {
		response.Err(w, http.StatusInternalServerError, "CONFIGURATION_ERROR", "Missing Google API environment variables", requestID)
		return
	}

	var sinkErr *registration.SinkError
	if errors.As(err, &sinkErr) {
		switch sinkErr.Kind {
		case registration.SinkAuthFailure:
			response.Err(w, http.StatusInternalServerError, "SINK_AUTH_FAILURE", "Record sink rejected the service credentials", requestID)
		case registration.SinkUnavailable:
			response.Err(w, http.StatusInternalServerError, "SINK_UNAVAILABLE", "Record sink is temporarily unavailable", requestID)
		default:
			response.Err(w, http.StatusInternalServerError, "SINK_ERROR", "Failed to record registration", requestID)
		}
		return
	}

	response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Unknown error occurred", requestID)
}

func validationCode(err *registration.ValidationError) string {
	switch {
	case errors.Is(err, registration.ErrMissingField):
		return "MISSING_FIELD"
	case errors.Is(err, registration.ErrInvalidTeamSize):
		return "INVALID_TEAM_SIZE"
	case errors.Is(err, registration.ErrInvalidKind):
		return "INVALID_TYPE"
	default:
		return "VALIDATION_ERROR"
	}
}
