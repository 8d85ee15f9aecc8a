package access

import (
	"fmt"

	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
)

type AccessErrorCause string

const (
	// no response: connect error, timeout, read error. Retried; returned
	// once attempts are exhausted.
	ErrCauseTransport AccessErrorCause = "transport failure"
	// a response with a non-2xx status. Never retried.
	ErrCauseBadResponse AccessErrorCause = "bad response"
	ErrCauseInvalidRequest AccessErrorCause = "invalid request"
	ErrCauseCanceled       AccessErrorCause = "canceled"
)

type AccessError struct {
	Message    string
	Retryable  bool
	Cause      AccessErrorCause
	StatusCode int
	Attempts   int
}

func (e *AccessError) Error() string {
	if e.Cause == ErrCauseBadResponse {
		return fmt.Sprintf("access error: %s: status %d", e.Cause, e.StatusCode)
	}
	return fmt.Sprintf("access error: %s: %s", e.Cause, e.Message)
}

func (e *AccessError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *AccessError) IsRetryable() bool {
	return e.Retryable
}

// IsTransport reports whether err is a transport failure, as opposed to a
// received non-2xx response.
func IsTransport(err error) bool {
	accessErr, ok := asAccessError(err)
	return ok && accessErr.Cause == ErrCauseTransport
}

// IsBadResponse reports whether err is a non-2xx response.
func IsBadResponse(err error) bool {
	accessErr, ok := asAccessError(err)
	return ok && accessErr.Cause == ErrCauseBadResponse
}

// mapAccessErrorToMetadataCause is observational only.
func mapAccessErrorToMetadataCause(err *AccessError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseTransport, ErrCauseCanceled:
		return metadata.CauseNetworkFailure
	case ErrCauseBadResponse:
		return metadata.CauseBadResponse
	case ErrCauseInvalidRequest:
		return metadata.CauseInvariantViolation
	default:
		return metadata.CauseUnknown
	}
}
