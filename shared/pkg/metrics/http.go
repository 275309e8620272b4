// Package metrics registers the prometheus collectors shared across services
// and exposes middleware/helpers that feed them.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by service, method, route and status.",
	}, []string{"service", "method", "route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"service", "method", "route"})

	busEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bus_events_total",
		Help: "Consumed bus events by routing key and outcome.",
	}, []string{"service", "key", "outcome"})
)

// Event records the outcome of one consumed bus delivery
// (ok, retry, dropped, skipped).
func Event(service, key, outcome string) {
	busEventsTotal.WithLabelValues(service, key, outcome).Inc()
}

type recorder struct {
	http.ResponseWriter
	status int
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware instruments every request with the shared counter and histogram.
// Routes are labeled by chi pattern so path params do not explode cardinality.
func Middleware(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(rec, r)

			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			requestsTotal.WithLabelValues(service, r.Method, route, strconv.Itoa(rec.status)).Inc()
			requestDuration.WithLabelValues(service, r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}
