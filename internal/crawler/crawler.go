package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rohmanhakim/vnlaw-crawler/internal/attachment"
	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/internal/frontier"
	"github.com/rohmanhakim/vnlaw-crawler/internal/logger"
	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/internal/portal"
	"github.com/rohmanhakim/vnlaw-crawler/internal/sanitizer"
	"github.com/rohmanhakim/vnlaw-crawler/internal/storage"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/limiter"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/timeutil"
	"golang.org/x/sync/errgroup"
)

/*
 Crawler is the sole control-plane authority of a crawl.

 - It decides which listed documents are crawled: an ID is claimed once
   per pass and skipped when the store already has it.
 - Pipeline stages (portal, attachment, enrich, storage) classify their
   failures but never decide retry, continuation or abortion.
 - A failure inside one document job ends that job only. A failure to
   read the first listing page ends the pass.
 - Metadata emission is observational only and never influences
   scheduling or termination.

 Each pass records its final statistics exactly once, also when it aborts.
*/
type Crawler struct {
	metadataSink   metadata.MetadataSink
	crawlFinalizer metadata.CrawlFinalizer
	log            logger.Interface
	store          storage.Store
	portals        map[document.Collection]portal.Portal
	resolver       attachment.Resolver
	enricher       Enricher
	sanitizer      sanitizer.Sanitizer
	pageLimiter    limiter.RateLimiter
	graphLimiter   limiter.RateLimiter
	param          CrawlerParam
}

// Dependencies are the collaborators of a Crawler. Enricher may be nil.
type Dependencies struct {
	MetadataSink   metadata.MetadataSink
	CrawlFinalizer metadata.CrawlFinalizer
	Logger         logger.Interface
	Store          storage.Store
	Portals        []portal.Portal
	Resolver       attachment.Resolver
	Enricher       Enricher
	Sanitizer      sanitizer.Sanitizer
}

func NewCrawler(deps Dependencies, param CrawlerParam) *Crawler {
	param = param.withDefaults()

	portals := make(map[document.Collection]portal.Portal, len(deps.Portals))
	for _, p := range deps.Portals {
		portals[p.Collection()] = p
	}

	pageLimiter := limiter.NewConcurrentRateLimiter()
	pageLimiter.SetBaseDelay(param.PageDelay)
	// an unreadable listing page doubles the spacing, up to ten base delays
	pageLimiter.SetBackoffParam(timeutil.NewBackoffParam(param.PageDelay, 2.0, 10*param.PageDelay))
	graphLimiter := limiter.NewConcurrentRateLimiter()
	graphLimiter.SetBaseDelay(param.GraphDelay)

	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}

	return &Crawler{
		metadataSink:   deps.MetadataSink,
		crawlFinalizer: deps.CrawlFinalizer,
		log:            log.WithComponent("crawler"),
		store:          deps.Store,
		portals:        portals,
		resolver:       deps.Resolver,
		enricher:       deps.Enricher,
		sanitizer:      deps.Sanitizer,
		pageLimiter:    pageLimiter,
		graphLimiter:   graphLimiter,
		param:          param,
	}
}

func (c *Crawler) portal(collection document.Collection) (portal.Portal, failure.ClassifiedError) {
	p, ok := c.portals[collection]
	if !ok {
		return nil, &CrawlError{
			Message: fmt.Sprintf("collection %q is not configured", collection),
			Cause:   ErrCauseUnknownCollection,
		}
	}
	return p, nil
}

func (c *Crawler) startRun(collection document.Collection, kind string) *run {
	id := uuid.NewString()
	r := &run{
		id:         id,
		collection: collection,
		startedAt:  time.Now(),
		log:        c.log.With("run_id", id, "collection", string(collection), "pass", kind),
		frontier:   frontier.NewFrontier(),
	}
	r.log.Info("crawl pass started")
	return r
}

func (c *Crawler) finishRun(r *run) metadata.CrawlStats {
	stats := r.stats()
	c.crawlFinalizer.RecordFinalCrawlStats(stats)
	r.log.Info("crawl pass finished",
		"pages", stats.PagesListed,
		"dispatched", stats.Dispatched,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"edges", stats.Edges,
		"aborted", stats.Aborted,
		"duration", stats.Duration,
	)
	return stats
}

// CrawlAll walks every listing page of collection and crawls each listed
// document the store does not have yet. The number of pages comes from the
// total count on page 1; the walk also stops at the first empty page.
// Documents saved by the pass then get their related and cross-reference
// edges crawled.
func (c *Crawler) CrawlAll(ctx context.Context, collection document.Collection) (stats metadata.CrawlStats, err failure.ClassifiedError) {
	p, err := c.portal(collection)
	if err != nil {
		return metadata.CrawlStats{}, err
	}

	r := c.startRun(collection, "listing")
	defer func() { stats = c.finishRun(r) }()

	first, listErr := p.Listing(ctx, 1)
	if listErr != nil {
		r.aborted.Store(true)
		r.log.Error("listing bootstrap failed", "error", listErr.Error())
		return metadata.CrawlStats{}, &CrawlError{Message: listErr.Error(), Cause: ErrCauseBootstrap}
	}

	lastPage := -1
	if first.TotalKnown {
		lastPage = pageCount(first.Total, p.PageSize())
	}
	r.log.Info("listing bootstrapped", "total", first.Total, "pages", lastPage)

	g := new(errgroup.Group)
	g.SetLimit(c.param.Concurrency)

	listing := first
	for page := 1; ; page++ {
		if page > 1 {
			if lastPage >= 0 && page > lastPage {
				break
			}
			if waitErr := c.pageLimiter.Wait(ctx, string(collection)); waitErr != nil {
				r.aborted.Store(true)
				break
			}
			next, listErr := p.Listing(ctx, page)
			if listErr != nil {
				r.log.Error("listing page failed", "page", page, "error", listErr.Error())
				c.pageLimiter.Backoff(string(collection))
				if lastPage < 0 {
					// without a bound an unreadable page cannot be stepped over
					break
				}
				continue
			}
			c.pageLimiter.ResetBackoff(string(collection))
			listing = next
		}

		r.pagesListed.Add(1)
		if len(listing.Entries) == 0 {
			break
		}
		r.log.Debug("listing page read", "page", page, "entries", len(listing.Entries))
		for _, entry := range listing.Entries {
			c.admit(ctx, g, r, p, entry)
		}
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		r.aborted.Store(true)
		return metadata.CrawlStats{}, &CrawlError{Message: ctx.Err().Error(), Cause: ErrCauseCancelled}
	}

	if collection.Kind() == document.KindLegalInstrument {
		c.crawlGraph(ctx, r, p, r.frontier.Drain())
	}
	return metadata.CrawlStats{}, nil
}

func pageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// admit dispatches entry unless it was already claimed in this pass or the
// store has it.
func (c *Crawler) admit(ctx context.Context, g *errgroup.Group, r *run, p portal.Portal, entry portal.ListingEntry) {
	r.itemsSeen.Add(1)
	if !r.frontier.Claim(entry.ID) {
		return
	}

	key := document.Key{Source: p.Collection().Source(), ID: entry.ID}
	exists, err := c.store.Exists(ctx, key)
	if err != nil {
		c.jobFailed(r, key, &JobError{ID: entry.ID, Step: StepExists, Err: err})
		return
	}
	if exists {
		r.skipped.Add(1)
		c.metadataSink.RecordDocument(string(key.Source), key.ID, metadata.OutcomeSkipped, nil)
		return
	}

	r.dispatched.Add(1)
	g.Go(func() error {
		doc, jobErr := c.crawlDocument(ctx, p, entry)
		if jobErr != nil {
			c.jobFailed(r, key, jobErr)
			return nil
		}
		c.jobSaved(r, doc)
		return nil
	})
}

// CrawlByID crawls one document and upserts it, whether or not the store
// already has it.
func (c *Crawler) CrawlByID(ctx context.Context, collection document.Collection, id string) (*document.Document, failure.ClassifiedError) {
	p, err := c.portal(collection)
	if err != nil {
		return nil, err
	}

	r := c.startRun(collection, "by_id")
	defer c.finishRun(r)

	r.itemsSeen.Add(1)
	r.dispatched.Add(1)
	doc, jobErr := c.crawlDocument(ctx, p, portal.ListingEntry{ID: id})
	if jobErr != nil {
		c.jobFailed(r, document.Key{Source: collection.Source(), ID: id}, jobErr)
		return nil, jobErr
	}
	c.jobSaved(r, doc)
	return doc, nil
}

func (c *Crawler) jobSaved(r *run, doc *document.Document) {
	r.attachments.Add(int64(len(doc.Attachments)))
	r.frontier.Discover(doc.ID)
	c.metadataSink.RecordDocument(string(doc.Source), doc.ID, metadata.OutcomeSaved, []metadata.Attribute{
		metadata.NewAttr(metadata.AttrCollection, string(doc.Collection)),
		metadata.NewAttr(metadata.AttrRunID, r.id),
	})
}

func (c *Crawler) jobFailed(r *run, key document.Key, err *JobError) {
	r.failed.Add(1)
	r.log.Error("document job failed",
		"document_id", key.ID,
		"step", err.Step,
		"error", err.Err.Error(),
	)
	c.metadataSink.RecordDocument(string(key.Source), key.ID, metadata.OutcomeFailed, []metadata.Attribute{
		metadata.NewAttr(metadata.AttrStep, err.Step),
		metadata.NewAttr(metadata.AttrRunID, r.id),
	})
}
