// Package metrics holds the Prometheus collectors exported on /metrics.
//
// Collectors register with the default registry when the package loads,
// so every package that records a metric imports this one and nothing
// else needs wiring.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExecutionsTotal counts executions by language and result status
	// (success, compilation_error, timeout, ...).
	ExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codesense_executions_total",
			Help: "Total number of code executions",
		},
		[]string{"language", "status"},
	)

	// ExecutionDuration tracks wall-clock execution time in seconds.
	ExecutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codesense_execution_duration_seconds",
			Help:    "Duration of code executions in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"language"},
	)

	// HTTPRequestsTotal counts requests by chi route pattern, so
	// /api/notes/{id} is one series no matter how many ids are seen.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codesense_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// SandboxFailures counts containers the Docker pool failed to create.
	// These are infrastructure failures, not user code errors.
	SandboxFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codesense_sandbox_failures_total",
			Help: "Total number of sandbox container failures",
		},
		[]string{"image"},
	)
)
