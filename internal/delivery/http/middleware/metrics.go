package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lesingerouge/crawler/pkg/metrics"
)

// Metrics records request counts and latency labelled by route pattern, so
// unknown paths collapse into a single series.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			duration := time.Since(start)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			path := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				path = rctx.RoutePattern()
			}
			code := strconv.Itoa(status)
			m.HTTPRequestDuration.WithLabelValues(r.Method, path, code).Observe(duration.Seconds())
			m.HTTPRequestsTotal.WithLabelValues(r.Method, path, code).Inc()
		})
	}
}
