package httpapi

import (
	"net/http"
	"time"

	"memberportal/web-service/internal/logging"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs one line per request and feeds the request
// collectors.
func LoggingMiddleware(logger logging.Logger, metrics *Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		writer := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(writer, r)
		duration := time.Since(start)

		metrics.observeRequest(r.Method, writer.status, duration.Seconds())
		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", writer.status,
			"duration_ms", duration.Milliseconds(),
			"request_id", r.Header.Get("X-Request-ID"),
		}
		if writer.status >= http.StatusInternalServerError {
			logger.Error(r.Context(), "request", args...)
			return
		}
		logger.Info(r.Context(), "request", args...)
	})
}
