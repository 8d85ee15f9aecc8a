package metadata

import (
	"time"
)

/*
ErrorCause is a closed classification used for observability only
(logging, metrics, reporting). It never drives retry, skip or abort
decisions; those belong to the crawler and the ClassifiedError severity.

Pipeline packages map their local error causes onto ErrorCause. A failure
that does not clearly match a cause maps to CauseUnknown.
*/
type ErrorCause int

const (
	CauseUnknown ErrorCause = iota
	// transport failure: connect error, timeout, retries exhausted
	CauseNetworkFailure
	// non-2xx response received
	CauseBadResponse
	// page fetched but expected markup or field missing
	CauseContentInvalid
	// registry search found no confirmed candidate
	CauseNoMatch
	// no derivable document or file identity
	CauseIdentity
	CauseStorageFailure
	CauseInvariantViolation
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CauseBadResponse:
		return "bad_response"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseNoMatch:
		return "no_match"
	case CauseIdentity:
		return "identity"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseInvariantViolation:
		return "invariant_violation"
	default:
		return "unknown"
	}
}

type ArtifactKind string

const (
	ArtifactAttachment ArtifactKind = "attachment"
	ArtifactPreview    ArtifactKind = "preview"
)

// DocumentOutcome is the terminal state of one per-document job.
type DocumentOutcome string

const (
	OutcomeSaved   DocumentOutcome = "saved"
	OutcomeSkipped DocumentOutcome = "skipped"
	OutcomeFailed  DocumentOutcome = "failed"
)

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL        AttributeKey = "url"
	AttrMethod     AttributeKey = "method"
	AttrParams     AttributeKey = "params"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrSource     AttributeKey = "source"
	AttrCollection AttributeKey = "collection"
	AttrDocumentID AttributeKey = "document_id"
	AttrStep       AttributeKey = "step"
	AttrField      AttributeKey = "field"
	AttrPage       AttributeKey = "page"
	AttrWritePath  AttributeKey = "write_path"
	AttrHash       AttributeKey = "hash"
	AttrBinaryKind AttributeKey = "binary_kind"
	AttrRunID      AttributeKey = "run_id"
)

// CrawlStats is the terminal summary of one crawl pass. It is derived from
// crawler state after the pass ends and recorded exactly once.
type CrawlStats struct {
	RunID       string
	Collection  string
	PagesListed int
	ItemsSeen   int
	Dispatched  int
	Skipped     int
	Failed      int
	Attachments int
	Edges       int
	Aborted     bool
	Duration    time.Duration
}
