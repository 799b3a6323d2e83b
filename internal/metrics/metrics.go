package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for formbridge
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Submission Metrics
	SubmissionsTotal          *prometheus.CounterVec
	CRMRequestDuration        *prometheus.HistogramVec
	MappingDroppedFieldsTotal prometheus.Counter

	// Import and shortcode Metrics
	ImportsTotal              *prometheus.CounterVec
	ShortcodeResolutionsTotal *prometheus.CounterVec

	// Job Metrics
	RetentionDeletedTotal prometheus.Counter
	JobDuration           *prometheus.HistogramVec
}

// NewMetricsRegistry registers every metric with reg. The server passes
// prometheus.DefaultRegisterer, tests a fresh prometheus.NewRegistry().
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formbridge_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "formbridge_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "formbridge_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		SubmissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formbridge_submissions_total",
				Help: "Form submissions by final status",
			},
			[]string{"status"},
		),
		CRMRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "formbridge_crm_request_duration_seconds",
				Help:    "CRM ingestion API latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"outcome"},
		),
		MappingDroppedFieldsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "formbridge_mapping_dropped_fields_total",
				Help: "Submitted fields dropped because they had no CRM mapping",
			},
		),

		ImportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formbridge_imports_total",
				Help: "Forms imported by source plugin",
			},
			[]string{"source"},
		),
		ShortcodeResolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formbridge_shortcode_resolutions_total",
				Help: "Shortcode render attempts by tag and outcome",
			},
			[]string{"tag", "outcome"},
		),

		RetentionDeletedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "formbridge_retention_deleted_total",
				Help: "Submissions deleted by the retention sweep",
			},
		),
		JobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "formbridge_job_duration_seconds",
				Help:    "Background job execution time in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
			[]string{"job_name"},
		),
	}
}
