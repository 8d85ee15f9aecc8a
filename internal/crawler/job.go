package crawler

import (
	"context"
	"net/url"

	"github.com/rohmanhakim/vnlaw-crawler/internal/attachment"
	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/internal/outline"
	"github.com/rohmanhakim/vnlaw-crawler/internal/portal"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/urlutil"
)

// crawlDocument runs the job of one document: detail pages, outline,
// attachments, enrichment, body cleanup, persistence. The steps run in
// this order and the first failing step ends the job. Attachment and
// enrichment failures are recorded but do not end it.
func (c *Crawler) crawlDocument(ctx context.Context, p portal.Portal, entry portal.ListingEntry) (*document.Document, *JobError) {
	detail, err := p.Detail(ctx, entry)
	if err != nil {
		return nil, &JobError{ID: entry.ID, Step: StepDetail, Err: err}
	}
	doc := detail.Document
	legal := doc.Kind() == document.KindLegalInstrument

	if legal {
		doc.Outline = outline.Parse(detail.Blocks).Articles
	}

	for _, remote := range uniqueURLs(detail.AttachmentURLs) {
		// failed downloads stay on the document with status failed
		ref, _ := c.resolver.Resolve(ctx, attachment.Request{
			Source:    doc.Source,
			RemoteURL: remote,
		})
		doc.Attachments = append(doc.Attachments, ref)
	}

	if legal && c.enricher != nil {
		if _, err := c.enricher.Enrich(ctx, doc); err != nil {
			c.log.Warn("enrichment failed",
				"document_id", doc.ID,
				"error", err.Error(),
			)
		}
	}

	if c.sanitizer != nil {
		body, err := c.sanitizer.Sanitize(doc.BodyHTML)
		if err != nil {
			return nil, &JobError{ID: doc.ID, Step: StepSanitize, Err: err}
		}
		doc.BodyHTML = body
	}

	if err := c.store.Save(ctx, doc); err != nil {
		return nil, &JobError{ID: doc.ID, Step: StepSave, Err: err}
	}
	if legal {
		if err := c.store.SaveOutline(ctx, doc.Key(), doc.Outline); err != nil {
			return nil, &JobError{ID: doc.ID, Step: StepSaveOutline, Err: err}
		}
	}
	return doc, nil
}

// uniqueURLs drops repeated attachment links, compared in canonical form.
func uniqueURLs(remotes []string) []string {
	seen := make(map[string]bool, len(remotes))
	unique := make([]string, 0, len(remotes))
	for _, remote := range remotes {
		key := remote
		if u, err := url.Parse(remote); err == nil {
			canonical := urlutil.Canonicalize(*u)
			key = canonical.String()
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, remote)
	}
	return unique
}
