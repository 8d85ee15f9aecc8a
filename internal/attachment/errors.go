package attachment

import (
	"fmt"

	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
)

type AttachmentErrorCause string

const (
	// no usable file name could be derived
	ErrCauseIdentity AttachmentErrorCause = "identity failure"
	ErrCauseDownload AttachmentErrorCause = "download failure"
	// a non-2xx answer to the download
	ErrCauseBadResponse AttachmentErrorCause = "bad response"
	ErrCauseWrite       AttachmentErrorCause = "write failure"
)

type AttachmentError struct {
	Message   string
	Retryable bool
	Cause     AttachmentErrorCause
}

func (e *AttachmentError) Error() string {
	return fmt.Sprintf("attachment error: %s: %s", e.Cause, e.Message)
}

func (e *AttachmentError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *AttachmentError) IsRetryable() bool {
	return e.Retryable
}

// mapAttachmentErrorToMetadataCause is observational only.
func mapAttachmentErrorToMetadataCause(err *AttachmentError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseIdentity:
		return metadata.CauseIdentity
	case ErrCauseDownload:
		return metadata.CauseNetworkFailure
	case ErrCauseBadResponse:
		return metadata.CauseBadResponse
	case ErrCauseWrite:
		return metadata.CauseStorageFailure
	default:
		return metadata.CauseUnknown
	}
}
