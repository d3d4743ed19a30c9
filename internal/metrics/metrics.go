// Package metrics exposes Prometheus instrumentation for the API server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	RateLimited         *prometheus.CounterVec

	// Domain metrics
	Mutations       *prometheus.CounterVec
	StepTransitions *prometheus.CounterVec
	ForecastsAtRisk prometheus.Counter
}

// New creates the collectors and registers them, together with the Go
// runtime and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "panelpeace",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route and status code.",
		},
		[]string{"method", "route", "code"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "panelpeace",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	m.RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "panelpeace",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		},
		[]string{"rule"},
	)

	m.Mutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "panelpeace",
			Name:      "mutations_total",
			Help:      "Successful writes by entity and action.",
		},
		[]string{"entity", "action"},
	)

	m.StepTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "panelpeace",
			Name:      "step_transitions_total",
			Help:      "Workflow step status changes.",
		},
		[]string{"from", "to"},
	)

	m.ForecastsAtRisk = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "panelpeace",
			Name:      "forecasts_at_risk_total",
			Help:      "Forecasts that projected a finish after the due date.",
		},
	)

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RateLimited,
		m.Mutations,
		m.StepTransitions,
		m.ForecastsAtRisk,
	)

	return m
}

// Registry returns the registry backing these metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Mutation records a successful write.
func (m *Metrics) Mutation(entity, action string) {
	m.Mutations.WithLabelValues(entity, action).Inc()
}

// Transition records a step status change.
func (m *Metrics) Transition(from, to string) {
	m.StepTransitions.WithLabelValues(from, to).Inc()
}

// Middleware records request counts and latency. Routes are labelled by the
// ServeMux pattern so per-id paths do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// responseWriter captures the status code written by a handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
