// Package metrics holds the Prometheus collectors for the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Store metrics
	StoreCommitsTotal   *prometheus.CounterVec
	StoreCommitDuration *prometheus.HistogramVec

	// Outcome metrics
	OutcomesTotal *prometheus.CounterVec
}

// New creates and registers all metrics on the given registry. A nil
// registry gets a fresh private one.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todoapi_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "todoapi_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		StoreCommitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todoapi_store_commits_total",
				Help: "Total number of store commits",
			},
			[]string{"backend", "result"},
		),
		StoreCommitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "todoapi_store_commit_duration_seconds",
				Help:    "Store commit duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend"},
		),
		OutcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todoapi_outcomes_total",
				Help: "Todo operation outcomes by kind",
			},
			[]string{"operation", "kind"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.StoreCommitsTotal,
		m.StoreCommitDuration,
		m.OutcomesTotal,
	)
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveCommit records one store commit.
func (m *Metrics) ObserveCommit(backend string, d time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.StoreCommitsTotal.WithLabelValues(backend, result).Inc()
	m.StoreCommitDuration.WithLabelValues(backend).Observe(d.Seconds())
}

// ObserveOutcome records the outcome kind of a todo operation.
func (m *Metrics) ObserveOutcome(operation, kind string) {
	m.OutcomesTotal.WithLabelValues(operation, kind).Inc()
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
