package preview

import (
	"fmt"

	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
)

type PreviewErrorCause string

const (
	ErrCauseRender PreviewErrorCause = "render failed"
	ErrCauseWrite  PreviewErrorCause = "write failed"
)

type PreviewError struct {
	Message   string
	Retryable bool
	Cause     PreviewErrorCause
	Path      string
}

func (e *PreviewError) Error() string {
	return fmt.Sprintf("preview error: %s: %s", e.Cause, e.Message)
}

func (e *PreviewError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *PreviewError) IsRetryable() bool {
	return e.Retryable
}

func mapPreviewErrorToMetadataCause(err *PreviewError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseRender:
		return metadata.CauseContentInvalid
	case ErrCauseWrite:
		return metadata.CauseStorageFailure
	default:
		return metadata.CauseUnknown
	}
}
