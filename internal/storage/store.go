/*
Package storage persists documents, their outlines and the relation
edges between them.

Responsibilities
- Answer "already ingested?" for idempotent resume
- Upsert documents and replace outlines
- Insert edges at most once per identity key
- Serve the read paths (fetch one, preview export)

Every Store is safe for concurrent use by the crawl workers. Check-then-insert
races between workers are settled by the store itself: document writes are
upserts and edge writes are insert-if-absent.
*/
package storage

import (
	"context"
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/internal/outline"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
)

type Store interface {
	Exists(ctx context.Context, key document.Key) (bool, failure.ClassifiedError)
	// Save inserts doc or replaces the stored record with the same key.
	// The outline is written separately by SaveOutline.
	Save(ctx context.Context, doc *document.Document) failure.ClassifiedError
	// SaveOutline replaces the articles stored for key.
	SaveOutline(ctx context.Context, key document.Key, articles []outline.Article) failure.ClassifiedError
	EdgeExists(ctx context.Context, edge document.Edge) (bool, failure.ClassifiedError)
	// SaveEdge inserts edge unless an edge with the same identity key
	// exists. It reports whether a row was inserted.
	SaveEdge(ctx context.Context, edge document.Edge) (bool, failure.ClassifiedError)

	// Get returns the document with its outline, or ErrCauseNotFound.
	Get(ctx context.Context, key document.Key) (*document.Document, failure.ClassifiedError)
	List(ctx context.Context, filter ListFilter) ([]*document.Document, failure.ClassifiedError)
	// Edges returns the edges leaving key, both spaces.
	Edges(ctx context.Context, key document.Key) ([]document.Edge, failure.ClassifiedError)
}

// ListFilter selects documents for the preview export.
type ListFilter struct {
	Source document.Source
	// IssuedFrom keeps documents issued on or after this day. Nil keeps all.
	IssuedFrom *time.Time
	// Limit caps the result; zero means no limit.
	Limit int
}
