package metadata

import (
	"strconv"
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/internal/logger"
	"github.com/rohmanhakim/vnlaw-crawler/internal/metrics"
)

/*
MetadataSink receives structured crawl events.

Metadata is write-only: no component reads it back to influence crawl
decisions. Events from one worker arrive in order; there is no global
ordering across workers.
*/
type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)
	// RecordRequest is called once per completed HTTP attempt.
	// params is the encoded query string; bodies are never recorded.
	RecordRequest(
		method string,
		url string,
		params string,
		httpStatus int,
		duration time.Duration,
		attempt int,
	)
	RecordRetry(
		method string,
		url string,
		params string,
		attempt int,
		delay time.Duration,
		reason string,
	)
	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
	RecordDocument(source string, id string, outcome DocumentOutcome, attrs []Attribute)
	RecordMatch(source string, id string, field string, matched bool, score float64)
}

type CrawlFinalizer interface {
	RecordFinalCrawlStats(stats CrawlStats)
}

// Recorder writes events as zap entries and, when metrics are attached,
// updates the Prometheus collectors.
type Recorder struct {
	log     logger.Interface
	metrics *metrics.Metrics
}

func NewRecorder(log logger.Interface, m *metrics.Metrics) *Recorder {
	return &Recorder{
		log:     log.WithComponent("metadata"),
		metrics: m,
	}
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
	fields := []any{
		"observed_at", observedAt,
		"package", packageName,
		"action", action,
		"cause", cause.String(),
		"details", details,
	}
	r.log.Error("pipeline error", append(fields, attrFields(attrs)...)...)

	if r.metrics != nil {
		r.metrics.ErrorsTotal.WithLabelValues(packageName, cause.String()).Inc()
	}
}

func (r *Recorder) RecordRequest(
	method string,
	url string,
	params string,
	httpStatus int,
	duration time.Duration,
	attempt int,
) {
	fields := []any{
		"method", method,
		"url", url,
		"params", params,
		"status", httpStatus,
		"duration", duration,
		"attempt", attempt,
	}
	if httpStatus < 200 || httpStatus > 299 {
		r.log.Warn("non-2xx response", fields...)
	} else {
		r.log.Debug("request", fields...)
	}

	if r.metrics != nil {
		r.metrics.RequestsTotal.WithLabelValues(method, metrics.StatusClass(httpStatus)).Inc()
		r.metrics.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
	}
}

func (r *Recorder) RecordRetry(
	method string,
	url string,
	params string,
	attempt int,
	delay time.Duration,
	reason string,
) {
	r.log.Warn("retrying request",
		"method", method,
		"url", url,
		"params", params,
		"attempt", attempt,
		"delay", delay,
		"reason", reason,
	)

	if r.metrics != nil {
		r.metrics.RetriesTotal.WithLabelValues(method).Inc()
	}
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	fields := append([]any{"kind", string(kind), "path", path}, attrFields(attrs)...)
	r.log.Info("artifact written", fields...)

	if r.metrics != nil && kind == ArtifactAttachment {
		label := "unknown"
		for _, a := range attrs {
			if a.Key == AttrBinaryKind {
				label = a.Value
			}
		}
		r.metrics.AttachmentsTotal.WithLabelValues(label).Inc()
	}
}

func (r *Recorder) RecordDocument(source string, id string, outcome DocumentOutcome, attrs []Attribute) {
	fields := append([]any{"source", source, "document_id", id, "outcome", string(outcome)}, attrFields(attrs)...)
	if outcome == OutcomeFailed {
		r.log.Error("document job failed", fields...)
	} else {
		r.log.Info("document job finished", fields...)
	}

	if r.metrics != nil {
		r.metrics.DocumentsTotal.WithLabelValues(source, string(outcome)).Inc()
	}
}

func (r *Recorder) RecordMatch(source string, id string, field string, matched bool, score float64) {
	r.log.Debug("registry match",
		"source", source,
		"document_id", id,
		"field", field,
		"matched", matched,
		"score", strconv.FormatFloat(score, 'f', 3, 64),
	)

	if r.metrics != nil {
		result := "no_match"
		if matched {
			result = "matched"
		}
		r.metrics.MatchesTotal.WithLabelValues(result).Inc()
	}
}

// RecordFinalCrawlStats records the terminal summary of a pass.
// Called exactly once per pass, after it ends or aborts.
func (r *Recorder) RecordFinalCrawlStats(stats CrawlStats) {
	r.log.Info("crawl pass finished",
		"run_id", stats.RunID,
		"collection", stats.Collection,
		"pages_listed", stats.PagesListed,
		"items_seen", stats.ItemsSeen,
		"dispatched", stats.Dispatched,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"attachments", stats.Attachments,
		"edges", stats.Edges,
		"aborted", stats.Aborted,
		"duration", stats.Duration,
	)

	if r.metrics != nil {
		r.metrics.PassDuration.WithLabelValues(stats.Collection).Observe(stats.Duration.Seconds())
	}
}

func attrFields(attrs []Attribute) []any {
	fields := make([]any, 0, len(attrs)*2)
	for _, a := range attrs {
		fields = append(fields, string(a.Key), a.Value)
	}
	return fields
}

// NoopSink implements MetadataSink and CrawlFinalizer and discards
// everything. Tests inject it to keep metadata orthogonal.
type NoopSink struct{}

func (n *NoopSink) RecordError(time.Time, string, string, ErrorCause, string, []Attribute) {}

func (n *NoopSink) RecordRequest(string, string, string, int, time.Duration, int) {}

func (n *NoopSink) RecordRetry(string, string, string, int, time.Duration, string) {}

func (n *NoopSink) RecordArtifact(ArtifactKind, string, []Attribute) {}

func (n *NoopSink) RecordDocument(string, string, DocumentOutcome, []Attribute) {}

func (n *NoopSink) RecordMatch(string, string, string, bool, float64) {}

func (n *NoopSink) RecordFinalCrawlStats(CrawlStats) {}
