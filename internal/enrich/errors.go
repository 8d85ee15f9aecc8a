package enrich

import (
	"fmt"

	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
)

type EnrichErrorCause string

const (
	// the registry could not be reached or answered non-2xx
	ErrCauseRegistry EnrichErrorCause = "registry call failed"
	ErrCauseDecode   EnrichErrorCause = "registry response undecodable"
)

type EnrichError struct {
	Message   string
	Retryable bool
	Cause     EnrichErrorCause
}

func (e *EnrichError) Error() string {
	return fmt.Sprintf("enrich error: %s: %s", e.Cause, e.Message)
}

func (e *EnrichError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *EnrichError) IsRetryable() bool {
	return e.Retryable
}

// mapEnrichErrorToMetadataCause is observational only.
func mapEnrichErrorToMetadataCause(err *EnrichError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseRegistry:
		return metadata.CauseNetworkFailure
	case ErrCauseDecode:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
