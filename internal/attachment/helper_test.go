package attachment_test

import (
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/internal/access"
	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/retry"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/timeutil"
)

type artifactEvent struct {
	kind  metadata.ArtifactKind
	path  string
	attrs []metadata.Attribute
}

type recordingSink struct {
	metadata.NoopSink
	mu        sync.Mutex
	artifacts []artifactEvent
	causes    []metadata.ErrorCause
}

func (s *recordingSink) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts = append(s.artifacts, artifactEvent{kind: kind, path: path, attrs: attrs})
}

func (s *recordingSink) RecordError(_ time.Time, _, _ string, cause metadata.ErrorCause, _ string, _ []metadata.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.causes = append(s.causes, cause)
}

func newClient(t *testing.T, sink metadata.MetadataSink) *access.Client {
	t.Helper()
	return access.NewClient(sink, access.ClientParam{
		BaseURL:        url.URL{},
		UserAgent:      "vnlaw-crawler-test",
		DefaultTimeout: time.Second,
		RetryParam:     retry.NewRetryParam(0, 1, 2, timeutil.NewBackoffParam(time.Millisecond, 2.0, 10*time.Millisecond)),
	})
}

func attrValue(attrs []metadata.Attribute, key metadata.AttributeKey) string {
	for _, a := range attrs {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}
