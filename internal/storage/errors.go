package storage

import (
	"errors"
	"fmt"

	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
)

type StorageErrorCause string

const (
	ErrCauseNotFound     StorageErrorCause = "not found"
	ErrCauseQueryFailure StorageErrorCause = "query failed"
	ErrCauseWriteFailure StorageErrorCause = "write failed"
	ErrCauseEncoding     StorageErrorCause = "encoding failed"
)

type StorageError struct {
	Message   string
	Retryable bool
	Cause     StorageErrorCause
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s: %s", e.Cause, e.Message)
}

func (e *StorageError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *StorageError) IsRetryable() bool {
	return e.Retryable
}

// IsNotFound reports whether err is a lookup of a missing document.
func IsNotFound(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr) && storageErr.Cause == ErrCauseNotFound
}

// mapStorageErrorToMetadataCause maps storage-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapStorageErrorToMetadataCause(err *StorageError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseQueryFailure, ErrCauseWriteFailure:
		return metadata.CauseStorageFailure
	case ErrCauseEncoding:
		return metadata.CauseInvariantViolation
	case ErrCauseNotFound:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
