/*
Package enrich reconciles crawled legal instruments with the canonical
registry.

Each identifying field of a document is searched in turn over the first
result pages. The first candidate whose name, number or key is similar
enough to the field confirms the match. A confirmed match overwrites the
lifecycle dates and status, sets the sector from the registry branches, and
supplies the original PDF when the portal had no attachment. Documents
left without a sector are filed under DefaultSector.
*/
package enrich

import (
	"context"
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/internal/attachment"
	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
)

const (
	DefaultThreshold = 0.8
	DefaultMaxPages  = 2
)

type MatchParam struct {
	Threshold float64
	MaxPages  int
	// Now is the clock statuses are derived against.
	Now func() time.Time
}

type Matcher struct {
	metadataSink metadata.MetadataSink
	registry     Registry
	resolver     attachment.Resolver
	param        MatchParam
}

func NewMatcher(
	metadataSink metadata.MetadataSink,
	registry Registry,
	resolver attachment.Resolver,
	param MatchParam,
) *Matcher {
	if param.Threshold <= 0 {
		param.Threshold = DefaultThreshold
	}
	if param.MaxPages <= 0 {
		param.MaxPages = DefaultMaxPages
	}
	if param.Now == nil {
		param.Now = time.Now
	}
	return &Matcher{
		metadataSink: metadataSink,
		registry:     registry,
		resolver:     resolver,
		param:        param,
	}
}

// Enrich looks doc up and merges a confirmed match into it. Finding no
// match is not an error. A registry failure aborts the lookup but leaves
// whatever was merged before it in place.
func (m *Matcher) Enrich(ctx context.Context, doc *document.Document) (MatchResult, failure.ClassifiedError) {
	hints := SearchQuery{
		IssuedFrom:    doc.Dates.Issuance,
		EffectiveFrom: doc.Dates.Effective,
		ExpiryFrom:    doc.Dates.Expiration,
	}

	for _, field := range doc.IdentifyingFields() {
		for page := 1; page <= m.param.MaxPages; page++ {
			query := hints
			query.Key = field.Value
			query.Page = page

			candidates, err := m.registry.Search(ctx, query)
			if err != nil {
				return MatchResult{}, err
			}
			for _, candidate := range candidates {
				score := candidate.Score(field.Value)
				if score < m.param.Threshold {
					continue
				}
				result := MatchResult{Matched: true, Field: field.Name, Score: score, Candidate: candidate}
				m.metadataSink.RecordMatch(string(doc.Source), doc.ID, field.Name, true, score)
				err := m.merge(ctx, doc, candidate)
				defaultSector(doc)
				return result, err
			}
		}
	}

	m.metadataSink.RecordMatch(string(doc.Source), doc.ID, "", false, 0)
	defaultSector(doc)
	return MatchResult{}, nil
}

func defaultSector(doc *document.Document) {
	if doc.Sector == "" {
		doc.Sector = DefaultSector
	}
}

func (m *Matcher) merge(ctx context.Context, doc *document.Document, candidate Candidate) failure.ClassifiedError {
	if effective := candidate.Effective(); effective != nil {
		expiry := candidate.Expiry()
		doc.Dates.Effective = effective
		if expiry != nil {
			doc.Dates.Expiration = expiry
		}
		doc.State = document.DeriveStatus(effective, expiry, m.param.Now())
	}

	if sector := candidate.Sector(); sector != "" {
		doc.Sector = sector
	}

	if doc.HasAttachment() || candidate.Slug == "" || m.resolver == nil {
		return nil
	}
	file, found, err := m.registry.File(ctx, candidate.Slug)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	// a failed download is recorded on the ref and by the resolver
	ref, _ := m.resolver.Resolve(ctx, attachment.Request{
		Source:    doc.Source,
		RemoteURL: file.URL,
		KnownID:   file.ID,
		IsPDF:     true,
	})
	doc.Attachments = append(doc.Attachments, ref)
	return nil
}
