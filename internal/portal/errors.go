package portal

import (
	"fmt"

	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
)

type ParseErrorCause string

const (
	ErrCauseNotHTML ParseErrorCause = "not html"
	// a required element of the page template is absent
	ErrCauseMissingElement ParseErrorCause = "missing element"
	ErrCauseBadValue       ParseErrorCause = "bad value"
)

// ParseError means a page did not have the shape its template promises.
type ParseError struct {
	Message   string
	Retryable bool
	Cause     ParseErrorCause
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s: %s", e.Cause, e.Message)
}

func (e *ParseError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *ParseError) IsRetryable() bool {
	return e.Retryable
}

func missing(what string) *ParseError {
	return &ParseError{
		Message:   what + " not found",
		Retryable: false,
		Cause:     ErrCauseMissingElement,
	}
}

// mapParseErrorToMetadataCause is observational only.
func mapParseErrorToMetadataCause(err *ParseError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseNotHTML, ErrCauseMissingElement, ErrCauseBadValue:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
