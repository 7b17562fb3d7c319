package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// requestLogger logs one line per request. Health probes and metric
// scrapes log at debug to keep the info stream quiet.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(sr, r)
			lvl := zerolog.InfoLevel
			switch r.URL.Path {
			case "/healthz", "/readyz", "/metrics":
				lvl = zerolog.DebugLevel
			}
			if sr.status >= http.StatusInternalServerError {
				lvl = zerolog.ErrorLevel
			}
			z := log.WithLevel(lvl).Str("method", r.Method).Str("path", r.URL.Path).
				Int("status", sr.status).Dur("dur", time.Since(start))
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				z = z.Str("request_id", rid)
			}
			z.Msg("admin request")
		})
	}
}
