/*
Package portal knows the page templates of the source portals.

A Portal lists one collection page by page and crawls the detail pages of
one document. The parse functions are pure and work on raw page bytes.
The portal types issue requests through an access.Doer and report parse
failures to the metadata sink. They never decide whether a crawl goes on.
*/
package portal

import (
	"context"
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/internal/access"
	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/internal/extractor"
	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
)

// Portal is one listable collection.
type Portal interface {
	Collection() document.Collection
	PageSize() int
	Listing(ctx context.Context, page int) (ListingPage, failure.ClassifiedError)
	Detail(ctx context.Context, entry ListingEntry) (Detail, failure.ClassifiedError)
	// Related and CrossRefs return the edges leaving id. Collections
	// without a relation graph return none.
	Related(ctx context.Context, id string) ([]document.Edge, failure.ClassifiedError)
	CrossRefs(ctx context.Context, id string) ([]document.Edge, failure.ClassifiedError)
}

// FullTextSource finds the body of a document elsewhere when its own
// portal has none.
type FullTextSource interface {
	FullText(ctx context.Context, doc *document.Document) (extractor.ExtractionResult, bool, failure.ClassifiedError)
}

type pageFetcher struct {
	metadataSink metadata.MetadataSink
	client       access.Doer
	site         string
}

func (f pageFetcher) get(ctx context.Context, req access.Request) ([]byte, failure.ClassifiedError) {
	resp, err := f.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func (f pageFetcher) fetch(ctx context.Context, req access.Request) (access.Response, failure.ClassifiedError) {
	return f.client.Do(ctx, req)
}

func (f pageFetcher) parseFailed(action string, id string, err *ParseError) *ParseError {
	f.metadataSink.RecordError(
		time.Now(),
		"portal",
		action,
		mapParseErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrSource, f.site),
			metadata.NewAttr(metadata.AttrDocumentID, id),
		},
	)
	return err
}

func toEdges(source document.Source, space document.EdgeSpace, id string, refs []CrossRef) []document.Edge {
	edges := make([]document.Edge, 0, len(refs))
	for _, ref := range refs {
		if ref.TargetID == "" {
			continue
		}
		edges = append(edges, document.Edge{
			Source:   source,
			Space:    space,
			SourceID: id,
			TargetID: ref.TargetID,
			Label:    ref.Label,
		})
	}
	return edges
}
