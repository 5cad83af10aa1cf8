package middleware

import (
	"log/slog"
	"net/http"

	"github.com/felixge/httpsnoop"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"status", m.Code,
				"bytes", m.Written,
				"duration_ms", m.Duration.Milliseconds(),
				"request_id", chimw.GetReqID(r.Context()),
			)
		})
	}
}
