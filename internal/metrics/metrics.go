// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "splitledger",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "splitledger",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	// ExpensesSubmitted counts successfully created split transactions.
	ExpensesSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "splitledger",
			Subsystem: "splits",
			Name:      "expenses_submitted_total",
			Help:      "Total number of expense transactions created with splits.",
		},
	)

	// SplitsCreated counts individual split rows created.
	SplitsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "splitledger",
			Subsystem: "splits",
			Name:      "rows_created_total",
			Help:      "Total number of transaction split rows created.",
		},
	)

	// RefreshFailures counts relationship balance refreshes that failed.
	// Failures here never fail the primary operation.
	RefreshFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "splitledger",
			Subsystem: "relationships",
			Name:      "refresh_failures_total",
			Help:      "Total number of failed relationship balance refreshes.",
		},
	)
)

func init() {
	Registry.MustRegister(httpRequests, httpDuration, ExpensesSubmitted, SplitsCreated, RefreshFailures)
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one handled HTTP request.
func ObserveHTTP(method, path string, status int, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
