package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/daap14/flightclub/internal/api/response"
)

// Recovery is middleware that recovers from panics and returns a 500 error.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				requestID := GetRequestID(r.Context())
				slog.Error("panic recovered",
					"error", err,
					"requestId", requestID,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Unknown error occurred", requestID)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
