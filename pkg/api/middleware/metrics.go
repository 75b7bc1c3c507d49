package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"shipdesk-hq/gateway/pkg/telemetry/metrics"
)

// MetricsMiddleware records the duration and status of every request,
// labelled with the matched chi route pattern rather than the raw path so
// item IDs do not create new series.
func MetricsMiddleware(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			collector.RecordHTTPRequest(route, r.Method, rw.statusCode, time.Since(start))
		})
	}
}
