package crawler

import (
	"context"

	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/internal/portal"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
	"golang.org/x/sync/errgroup"
)

// CrawlGraph crawls the related-document and cross-reference edges of ids
// and stores the ones not stored yet.
func (c *Crawler) CrawlGraph(ctx context.Context, collection document.Collection, ids []string) (stats metadata.CrawlStats, err failure.ClassifiedError) {
	p, err := c.portal(collection)
	if err != nil {
		return metadata.CrawlStats{}, err
	}

	r := c.startRun(collection, "graph")
	defer func() { stats = c.finishRun(r) }()

	c.crawlGraph(ctx, r, p, ids)
	if ctx.Err() != nil {
		r.aborted.Store(true)
		return metadata.CrawlStats{}, &CrawlError{Message: ctx.Err().Error(), Cause: ErrCauseCancelled}
	}
	return metadata.CrawlStats{}, nil
}

// graphSpace is one of the two edge spaces crawled for a document.
type graphSpace struct {
	step  string
	fetch func(context.Context, string) ([]document.Edge, failure.ClassifiedError)
}

// crawlGraph runs the related-document and cross-reference spaces side by
// side, each in its own bounded pool with its own politeness lane.
func (c *Crawler) crawlGraph(ctx context.Context, r *run, p portal.Portal, ids []string) {
	if len(ids) == 0 {
		return
	}
	r.log.Info("graph crawl started", "documents", len(ids))

	spaces := []graphSpace{
		{step: StepRelated, fetch: p.Related},
		{step: StepCrossRefs, fetch: p.CrossRefs},
	}
	var pools errgroup.Group
	for _, space := range spaces {
		pools.Go(func() error {
			c.crawlSpace(ctx, r, p, space, ids)
			return nil
		})
	}
	_ = pools.Wait()
}

func (c *Crawler) crawlSpace(ctx context.Context, r *run, p portal.Portal, space graphSpace, ids []string) {
	lane := "graph:" + space.step + ":" + string(p.Collection())
	g := new(errgroup.Group)
	g.SetLimit(c.param.Concurrency)
	for _, id := range ids {
		g.Go(func() error {
			c.crawlEdges(ctx, r, p, lane, space, id)
			return nil
		})
	}
	_ = g.Wait()
}

func (c *Crawler) crawlEdges(ctx context.Context, r *run, p portal.Portal, lane string, space graphSpace, id string) {
	if err := c.graphLimiter.Wait(ctx, lane); err != nil {
		return
	}
	key := document.Key{Source: p.Collection().Source(), ID: id}
	edges, err := space.fetch(ctx, id)
	if err != nil {
		c.jobFailed(r, key, &JobError{ID: id, Step: space.step, Err: err})
		return
	}
	if err := c.saveEdges(ctx, r, edges); err != nil {
		c.jobFailed(r, key, &JobError{ID: id, Step: StepSaveEdge, Err: err})
	}
}

// saveEdges stores the edges the store does not have yet.
func (c *Crawler) saveEdges(ctx context.Context, r *run, edges []document.Edge) failure.ClassifiedError {
	for _, edge := range edges {
		exists, err := c.store.EdgeExists(ctx, edge)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		inserted, err := c.store.SaveEdge(ctx, edge)
		if err != nil {
			return err
		}
		if inserted {
			r.edges.Add(1)
		}
	}
	return nil
}
