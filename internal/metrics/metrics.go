// Package metrics holds the Prometheus collectors of the crawler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vnlaw_crawler"

type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RetriesTotal     *prometheus.CounterVec
	ErrorsTotal      *prometheus.CounterVec
	DocumentsTotal   *prometheus.CounterVec
	AttachmentsTotal *prometheus.CounterVec
	MatchesTotal     *prometheus.CounterVec
	PassDuration     *prometheus.HistogramVec
}

// New registers every collector on reg. A nil reg uses a fresh private
// registry so repeated construction in tests never panics on duplicates.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "access",
			Name:      "requests_total",
			Help:      "HTTP requests issued, by method and status class",
		}, []string{"method", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "access",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"method"}),
		RetriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "access",
			Name:      "retries_total",
			Help:      "Retry attempts after transport failures",
		}, []string{"method"}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Errors observed, by package and cause",
		}, []string{"package", "cause"}),
		DocumentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crawler",
			Name:      "documents_total",
			Help:      "Per-document job outcomes",
		}, []string{"source", "outcome"}),
		AttachmentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attachment",
			Name:      "written_total",
			Help:      "Attachment files written, by kind",
		}, []string{"kind"}),
		MatchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrich",
			Name:      "matches_total",
			Help:      "Registry enrichment attempts, by result",
		}, []string{"result"}),
		PassDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "crawler",
			Name:      "pass_duration_seconds",
			Help:      "Duration of crawl passes",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 16),
		}, []string{"collection"}),
	}
}

// StatusClass buckets an HTTP status into "2xx", "4xx", ... or "error"
// when no response was received.
func StatusClass(status int) string {
	switch {
	case status <= 0:
		return "error"
	case status < 200:
		return "1xx"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
