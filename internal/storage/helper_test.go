package storage_test

import (
	"sync"
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
)

type errorSink struct {
	metadata.NoopSink
	mu     sync.Mutex
	causes []metadata.ErrorCause
}

func (s *errorSink) RecordError(_ time.Time, _, _ string, cause metadata.ErrorCause, _ string, _ []metadata.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.causes = append(s.causes, cause)
}
