package access_test

import (
	"sync"
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
)

type requestEvent struct {
	method string
	url    string
	params string
	status int
}

type retryEvent struct {
	attempt int
	delay   time.Duration
	url     string
	params  string
}

// spySink records request, retry and error events
type spySink struct {
	metadata.NoopSink
	mu       sync.Mutex
	requests []requestEvent
	retries  []retryEvent
	causes   []metadata.ErrorCause
}

func (s *spySink) RecordRequest(method, url, params string, status int, _ time.Duration, _ int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, requestEvent{method: method, url: url, params: params, status: status})
}

func (s *spySink) RecordRetry(method, url, params string, attempt int, delay time.Duration, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retries = append(s.retries, retryEvent{attempt: attempt, delay: delay, url: url, params: params})
}

func (s *spySink) RecordError(_ time.Time, _, _ string, cause metadata.ErrorCause, _ string, _ []metadata.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.causes = append(s.causes, cause)
}
