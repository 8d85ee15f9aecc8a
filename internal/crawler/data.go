package crawler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/internal/enrich"
	"github.com/rohmanhakim/vnlaw-crawler/internal/frontier"
	"github.com/rohmanhakim/vnlaw-crawler/internal/logger"
	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
)

const (
	DefaultConcurrency = 8
	DefaultPageDelay   = 3 * time.Second
	DefaultGraphDelay  = 1 * time.Second
)

// Step names reported for a failed document job.
const (
	StepExists      = "exists"
	StepDetail      = "detail"
	StepSanitize    = "sanitize"
	StepSave        = "save"
	StepSaveOutline = "save_outline"
	StepRelated     = "related"
	StepCrossRefs   = "crossrefs"
	StepSaveEdge    = "save_edge"
)

// Enricher completes a document from an external registry.
type Enricher interface {
	Enrich(ctx context.Context, doc *document.Document) (enrich.MatchResult, failure.ClassifiedError)
}

type CrawlerParam struct {
	// Concurrency is the width of each worker pool.
	Concurrency int
	// PageDelay spaces consecutive listing pages of one collection.
	PageDelay time.Duration
	// GraphDelay spaces consecutive related and cross-reference fetches.
	GraphDelay time.Duration
}

func (p CrawlerParam) withDefaults() CrawlerParam {
	if p.Concurrency <= 0 {
		p.Concurrency = DefaultConcurrency
	}
	if p.PageDelay < 0 {
		p.PageDelay = 0
	}
	if p.GraphDelay < 0 {
		p.GraphDelay = 0
	}
	return p
}

// run is the state of one pass. Counters are updated by concurrent workers.
type run struct {
	id         string
	collection document.Collection
	startedAt  time.Time
	log        logger.Interface
	frontier   *frontier.Frontier

	pagesListed atomic.Int64
	itemsSeen   atomic.Int64
	dispatched  atomic.Int64
	skipped     atomic.Int64
	failed      atomic.Int64
	attachments atomic.Int64
	edges       atomic.Int64
	aborted     atomic.Bool
}

func (r *run) stats() metadata.CrawlStats {
	return metadata.CrawlStats{
		RunID:       r.id,
		Collection:  string(r.collection),
		PagesListed: int(r.pagesListed.Load()),
		ItemsSeen:   int(r.itemsSeen.Load()),
		Dispatched:  int(r.dispatched.Load()),
		Skipped:     int(r.skipped.Load()),
		Failed:      int(r.failed.Load()),
		Attachments: int(r.attachments.Load()),
		Edges:       int(r.edges.Load()),
		Aborted:     r.aborted.Load(),
		Duration:    time.Since(r.startedAt),
	}
}
