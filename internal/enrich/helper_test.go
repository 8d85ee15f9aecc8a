package enrich_test

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/internal/access"
	"github.com/rohmanhakim/vnlaw-crawler/internal/attachment"
	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/internal/enrich"
	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/retry"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/timeutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type registryMock struct {
	mock.Mock
}

func (m *registryMock) Search(ctx context.Context, query enrich.SearchQuery) ([]enrich.Candidate, failure.ClassifiedError) {
	args := m.Called(ctx, query)
	var err failure.ClassifiedError
	if e := args.Get(1); e != nil {
		err = e.(failure.ClassifiedError)
	}
	candidates, _ := args.Get(0).([]enrich.Candidate)
	return candidates, err
}

func (m *registryMock) File(ctx context.Context, slug string) (enrich.RegistryFile, bool, failure.ClassifiedError) {
	args := m.Called(ctx, slug)
	var err failure.ClassifiedError
	if e := args.Get(2); e != nil {
		err = e.(failure.ClassifiedError)
	}
	return args.Get(0).(enrich.RegistryFile), args.Bool(1), err
}

type resolverMock struct {
	mock.Mock
}

func (m *resolverMock) Resolve(ctx context.Context, req attachment.Request) (document.AttachmentRef, failure.ClassifiedError) {
	args := m.Called(ctx, req)
	var err failure.ClassifiedError
	if e := args.Get(1); e != nil {
		err = e.(failure.ClassifiedError)
	}
	return args.Get(0).(document.AttachmentRef), err
}

type matchEvent struct {
	id      string
	field   string
	matched bool
}

type matchSink struct {
	metadata.NoopSink
	mu      sync.Mutex
	matches []matchEvent
	causes  []metadata.ErrorCause
}

func (s *matchSink) RecordMatch(_ string, id string, field string, matched bool, _ float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = append(s.matches, matchEvent{id: id, field: field, matched: matched})
}

func (s *matchSink) RecordError(_ time.Time, _, _ string, cause metadata.ErrorCause, _ string, _ []metadata.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.causes = append(s.causes, cause)
}

func query(key string, page int) interface{} {
	return mock.MatchedBy(func(q enrich.SearchQuery) bool {
		return q.Key == key && q.Page == page
	})
}

func newClient(t *testing.T, baseURL string) *access.Client {
	t.Helper()
	u, err := url.Parse(baseURL)
	require.NoError(t, err)
	return access.NewClient(&metadata.NoopSink{}, access.ClientParam{
		BaseURL:        *u,
		UserAgent:      "vnlaw-crawler-test",
		DefaultTimeout: time.Second,
		RetryParam:     retry.NewRetryParam(0, 1, 1, timeutil.NewBackoffParam(time.Millisecond, 2.0, 10*time.Millisecond)),
	})
}
