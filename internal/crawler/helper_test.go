package crawler_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/internal/attachment"
	"github.com/rohmanhakim/vnlaw-crawler/internal/crawler"
	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/internal/enrich"
	"github.com/rohmanhakim/vnlaw-crawler/internal/logger"
	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/internal/portal"
	"github.com/rohmanhakim/vnlaw-crawler/internal/sanitizer"
	"github.com/rohmanhakim/vnlaw-crawler/internal/storage"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
)

// fakePortal serves canned listing and detail pages.
type fakePortal struct {
	collection document.Collection
	pageSize   int

	mu          sync.Mutex
	pages       map[int]portal.ListingPage
	pageErrs    map[int]failure.ClassifiedError
	detailErrs  map[string]failure.ClassifiedError
	blocks      map[string][]string
	bodies      map[string]string
	attachments map[string][]string
	related     map[string][]document.Edge
	crossRefs   map[string][]document.Edge

	listed   []int
	detailed []string
}

func newFakePortal(collection document.Collection, pageSize int) *fakePortal {
	return &fakePortal{
		collection:  collection,
		pageSize:    pageSize,
		pages:       make(map[int]portal.ListingPage),
		pageErrs:    make(map[int]failure.ClassifiedError),
		detailErrs:  make(map[string]failure.ClassifiedError),
		blocks:      make(map[string][]string),
		bodies:      make(map[string]string),
		attachments: make(map[string][]string),
		related:     make(map[string][]document.Edge),
		crossRefs:   make(map[string][]document.Edge),
	}
}

func (f *fakePortal) Collection() document.Collection { return f.collection }

func (f *fakePortal) PageSize() int { return f.pageSize }

func (f *fakePortal) Listing(_ context.Context, page int) (portal.ListingPage, failure.ClassifiedError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listed = append(f.listed, page)
	if err, ok := f.pageErrs[page]; ok {
		return portal.ListingPage{}, err
	}
	return f.pages[page], nil
}

func (f *fakePortal) Detail(_ context.Context, entry portal.ListingEntry) (portal.Detail, failure.ClassifiedError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailed = append(f.detailed, entry.ID)
	if err, ok := f.detailErrs[entry.ID]; ok {
		return portal.Detail{}, err
	}
	return portal.Detail{
		Document: &document.Document{
			Source:     f.collection.Source(),
			Collection: f.collection,
			ID:         entry.ID,
			Title:      "Văn bản " + entry.ID,
			BodyHTML:   f.bodies[entry.ID],
		},
		Blocks:         f.blocks[entry.ID],
		AttachmentURLs: f.attachments[entry.ID],
	}, nil
}

func (f *fakePortal) Related(_ context.Context, id string) ([]document.Edge, failure.ClassifiedError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.related[id], nil
}

func (f *fakePortal) CrossRefs(_ context.Context, id string) ([]document.Edge, failure.ClassifiedError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.crossRefs[id], nil
}

func (f *fakePortal) detailedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.detailed...)
}

func (f *fakePortal) listedPages() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.listed...)
}

// pairedPortal answers Related only once CrossRefs has been called, so it
// stalls when both spaces share one sequential worker.
type pairedPortal struct {
	*fakePortal
	once          sync.Once
	crossRefsSeen chan struct{}
}

func newPairedPortal(p *fakePortal) *pairedPortal {
	return &pairedPortal{fakePortal: p, crossRefsSeen: make(chan struct{})}
}

func (p *pairedPortal) Related(ctx context.Context, id string) ([]document.Edge, failure.ClassifiedError) {
	select {
	case <-p.crossRefsSeen:
		return p.fakePortal.Related(ctx, id)
	case <-time.After(2 * time.Second):
		return nil, &portal.ParseError{Message: "cross references never requested", Cause: portal.ErrCauseMissingElement}
	}
}

func (p *pairedPortal) CrossRefs(ctx context.Context, id string) ([]document.Edge, failure.ClassifiedError) {
	p.once.Do(func() { close(p.crossRefsSeen) })
	return p.fakePortal.CrossRefs(ctx, id)
}

func entries(ids ...string) []portal.ListingEntry {
	out := make([]portal.ListingEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, portal.ListingEntry{ID: id, Title: "Văn bản " + id})
	}
	return out
}

func parseFailure(what string) failure.ClassifiedError {
	return &portal.ParseError{Message: what, Cause: portal.ErrCauseMissingElement}
}

type fakeResolver struct {
	mu       sync.Mutex
	requests []attachment.Request
}

func (r *fakeResolver) Resolve(_ context.Context, req attachment.Request) (document.AttachmentRef, failure.ClassifiedError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	return document.AttachmentRef{
		RemoteURL: req.RemoteURL,
		LocalName: fmt.Sprintf("(%d)-file.pdf", len(r.requests)),
		Kind:      document.BinaryPDF,
		Status:    document.AttachmentDownloaded,
	}, nil
}

type fakeEnricher struct {
	mu    sync.Mutex
	calls []string
	err   failure.ClassifiedError
}

func (e *fakeEnricher) Enrich(_ context.Context, doc *document.Document) (enrich.MatchResult, failure.ClassifiedError) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, doc.ID)
	if e.err != nil {
		return enrich.MatchResult{}, e.err
	}
	doc.Sector = "Đất đai"
	return enrich.MatchResult{Matched: true}, nil
}

type outcomeEvent struct {
	id      string
	outcome metadata.DocumentOutcome
}

type recordingSink struct {
	metadata.NoopSink
	mu       sync.Mutex
	outcomes []outcomeEvent
	finals   []metadata.CrawlStats
}

func (s *recordingSink) RecordDocument(_ string, id string, outcome metadata.DocumentOutcome, _ []metadata.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, outcomeEvent{id: id, outcome: outcome})
}

func (s *recordingSink) RecordFinalCrawlStats(stats metadata.CrawlStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finals = append(s.finals, stats)
}

func (s *recordingSink) outcomeOf(id string) []metadata.DocumentOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []metadata.DocumentOutcome
	for _, o := range s.outcomes {
		if o.id == id {
			out = append(out, o.outcome)
		}
	}
	return out
}

type fixture struct {
	sink     *recordingSink
	store    *storage.MemoryStore
	resolver *fakeResolver
	enricher *fakeEnricher
	crawler  *crawler.Crawler
}

func newFixture(portals ...portal.Portal) *fixture {
	f := &fixture{
		sink:     &recordingSink{},
		store:    storage.NewMemoryStore(),
		resolver: &fakeResolver{},
		enricher: &fakeEnricher{},
	}
	f.crawler = crawler.NewCrawler(crawler.Dependencies{
		MetadataSink:   f.sink,
		CrawlFinalizer: f.sink,
		Logger:         logger.NewNop(),
		Store:          f.store,
		Portals:        portals,
		Resolver:       f.resolver,
		Enricher:       f.enricher,
		Sanitizer:      sanitizer.NewHTMLSanitizer(f.sink),
	}, crawler.CrawlerParam{Concurrency: 3})
	return f
}
