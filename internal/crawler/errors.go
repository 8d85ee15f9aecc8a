package crawler

import (
	"fmt"

	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
)

type CrawlErrorCause string

const (
	ErrCauseUnknownCollection CrawlErrorCause = "no portal for collection"
	// the first listing page could not be read, so the pass has no bound
	ErrCauseBootstrap CrawlErrorCause = "listing bootstrap failed"
	ErrCauseCancelled CrawlErrorCause = "crawl cancelled"
)

// CrawlError ends a whole pass. It is always fatal.
type CrawlError struct {
	Message string
	Cause   CrawlErrorCause
}

func (e *CrawlError) Error() string {
	return fmt.Sprintf("crawl error: %s: %s", e.Cause, e.Message)
}

func (e *CrawlError) Severity() failure.Severity {
	return failure.SeverityFatal
}

// JobError ends the job of one document. Err is the failure of the named
// step and keeps its own classification.
type JobError struct {
	ID   string
	Step string
	Err  failure.ClassifiedError
}

func (e *JobError) Error() string {
	return fmt.Sprintf("document %s: %s: %v", e.ID, e.Step, e.Err)
}

func (e *JobError) Severity() failure.Severity {
	return e.Err.Severity()
}

func (e *JobError) Unwrap() error {
	return e.Err
}
