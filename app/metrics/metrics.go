// Package metrics provides Prometheus metrics for the newsletter service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vsnews"

var (
	// NewslettersGenerated counts generate-and-save runs by result.
	NewslettersGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "newsletters_generated_total",
			Help:      "Total number of newsletter generation attempts",
		},
		[]string{"result"},
	)

	// EmailsSent counts outbound newsletter emails by kind and result.
	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_sent_total",
			Help:      "Total number of newsletter emails",
		},
		[]string{"kind", "result"},
	)

	// NotificationFailures counts notifications dropped during fan-out.
	NotificationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Total number of notifications that could not be stored",
		},
	)

	// AIRequests counts model calls by operation and result.
	AIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_requests_total",
			Help:      "Total number of generative model requests",
		},
		[]string{"operation", "result"},
	)

	// PDFRenderDuration measures headless browser render time.
	PDFRenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pdf_render_duration_seconds",
			Help:      "Duration of HTML to PDF rendering in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)

	// NewsFetches counts upstream news fetches by source kind and result.
	NewsFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "news_fetches_total",
			Help:      "Total number of upstream news fetches",
		},
		[]string{"source", "result"},
	)

	// CacheLookups counts news cache lookups by outcome.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Total number of news cache lookups",
		},
		[]string{"outcome"},
	)
)

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordGenerate records a newsletter generation attempt.
func RecordGenerate(err error) {
	NewslettersGenerated.WithLabelValues(result(err)).Inc()
}

// RecordEmail records an email send.
func RecordEmail(kind string, err error) {
	EmailsSent.WithLabelValues(kind, result(err)).Inc()
}

// RecordAIRequest records a model call.
func RecordAIRequest(operation string, err error) {
	AIRequests.WithLabelValues(operation, result(err)).Inc()
}

// RecordNewsFetch records a fetch from a news source.
func RecordNewsFetch(source string, err error) {
	NewsFetches.WithLabelValues(source, result(err)).Inc()
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	CacheLookups.WithLabelValues("miss").Inc()
}
