// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoicer_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "invoicer_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	DocumentsNumbered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoicer_document_numbers_allocated_total",
		Help: "Document numbers handed out, by kind.",
	}, []string{"kind"})

	PaymentsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "invoicer_payments_recorded_total",
		Help: "Payments appended to invoice ledgers.",
	})

	PaymentsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "invoicer_payments_deleted_total",
		Help: "Payments removed from invoice ledgers.",
	})

	DashboardCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoicer_dashboard_cache_total",
		Help: "Dashboard cache lookups by result (hit, miss, error).",
	}, []string{"result"})
)
