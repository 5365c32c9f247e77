package server

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Alp4ka/unigraph/internal/ctxlog"
	"github.com/Alp4ka/unigraph/metrics"
)

const requestIDHeader = "X-Request-Id"

// RecoveryMiddleware catches panics, logs the stack trace, and returns a 500 error.
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.ErrorContext(r.Context(), "panic recovered in http handler",
						"error", err,
						"method", r.Method,
						"path", r.URL.Path,
						"request_id", w.Header().Get(requestIDHeader),
						"stack", string(debug.Stack()),
					)

					writeJSON(w, http.StatusInternalServerError, map[string]string{
						"error": "internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware attaches a request scoped logger carrying the request id,
// then logs the request and records its metrics once it is served.
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(requestIDHeader)
			if _, err := uuid.Parse(requestID); err != nil {
				requestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, requestID)

			reqLogger := logger.With("request_id", requestID)
			r = r.WithContext(ctxlog.WithLogger(r.Context(), reqLogger))

			wrapped := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			// The mux fills in the pattern; unmatched paths share one label.
			path := lo.Ternary(r.Pattern != "", r.Pattern, "unmatched")

			reqLogger.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration", duration.String(),
				"ip", r.RemoteAddr,
			)

			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration.Seconds())
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		})
	}
}

// responseWrapper captures the status code written by the next handler.
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
