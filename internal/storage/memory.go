package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/internal/outline"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps everything in process. It backs dry runs and tests.
// Documents are copied on the way in and out.
type MemoryStore struct {
	mu        sync.RWMutex
	documents map[document.Key]*document.Document
	outlines  map[document.Key][]outline.Article
	edges     map[string]document.Edge
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		documents: make(map[document.Key]*document.Document),
		outlines:  make(map[document.Key][]outline.Article),
		edges:     make(map[string]document.Edge),
		now:       time.Now,
	}
}

func (m *MemoryStore) Exists(_ context.Context, key document.Key) (bool, failure.ClassifiedError) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.documents[key]
	return ok, nil
}

func (m *MemoryStore) Save(_ context.Context, doc *document.Document) failure.ClassifiedError {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := copyDocument(doc)
	stored.Outline = nil
	now := m.now()
	stored.CreatedAt, stored.UpdatedAt = now, now
	if prev, ok := m.documents[doc.Key()]; ok {
		stored.CreatedAt = prev.CreatedAt
	}
	m.documents[doc.Key()] = stored
	return nil
}

func (m *MemoryStore) SaveOutline(_ context.Context, key document.Key, articles []outline.Article) failure.ClassifiedError {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[key]; !ok {
		return &StorageError{
			Message:   fmt.Sprintf("outline for unknown document %s", key),
			Retryable: false,
			Cause:     ErrCauseWriteFailure,
		}
	}
	m.outlines[key] = append([]outline.Article(nil), articles...)
	return nil
}

func (m *MemoryStore) EdgeExists(_ context.Context, edge document.Edge) (bool, failure.ClassifiedError) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.edges[edge.IdentityKey()]
	return ok, nil
}

func (m *MemoryStore) SaveEdge(_ context.Context, edge document.Edge) (bool, failure.ClassifiedError) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := edge.IdentityKey()
	if _, ok := m.edges[key]; ok {
		return false, nil
	}
	m.edges[key] = edge
	return true, nil
}

func (m *MemoryStore) Get(_ context.Context, key document.Key) (*document.Document, failure.ClassifiedError) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[key]
	if !ok {
		return nil, &StorageError{
			Message:   fmt.Sprintf("document %s", key),
			Retryable: false,
			Cause:     ErrCauseNotFound,
		}
	}
	return m.withOutline(doc), nil
}

func (m *MemoryStore) List(_ context.Context, filter ListFilter) ([]*document.Document, failure.ClassifiedError) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var docs []*document.Document
	for key, doc := range m.documents {
		if key.Source != filter.Source {
			continue
		}
		if filter.IssuedFrom != nil && (doc.Dates.Issuance == nil || doc.Dates.Issuance.Before(*filter.IssuedFrom)) {
			continue
		}
		docs = append(docs, m.withOutline(doc))
	}

	// newest issuance first, undated last
	sort.Slice(docs, func(i, j int) bool {
		a, b := docs[i].Dates.Issuance, docs[j].Dates.Issuance
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return docs[i].ID < docs[j].ID
	})

	if filter.Limit > 0 && len(docs) > filter.Limit {
		docs = docs[:filter.Limit]
	}
	return docs, nil
}

func (m *MemoryStore) Edges(_ context.Context, key document.Key) ([]document.Edge, failure.ClassifiedError) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var edges []document.Edge
	for _, e := range m.edges {
		if e.Source == key.Source && e.SourceID == key.ID {
			edges = append(edges, e)
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		return edges[i].IdentityKey() < edges[j].IdentityKey()
	})
	return edges, nil
}

func (m *MemoryStore) withOutline(doc *document.Document) *document.Document {
	out := copyDocument(doc)
	out.Outline = append([]outline.Article(nil), m.outlines[doc.Key()]...)
	return out
}

func copyDocument(doc *document.Document) *document.Document {
	out := *doc
	out.Attachments = append([]document.AttachmentRef(nil), doc.Attachments...)
	out.Outline = append([]outline.Article(nil), doc.Outline...)
	return &out
}
