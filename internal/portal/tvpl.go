package portal

import (
	"context"
	"errors"

	"github.com/rohmanhakim/vnlaw-crawler/internal/access"
	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/internal/extractor"
	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/internal/normalize"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
)

// TitleThreshold is the similarity a search hit needs to count as the
// same document.
const TitleThreshold = 0.8

var _ FullTextSource = (*TvplFallback)(nil)

// TvplFallback looks a document up on the secondary full-text site.
type TvplFallback struct {
	pageFetcher
	extractor *extractor.DomExtractor
}

func NewTvplFallback(metadataSink metadata.MetadataSink, client access.Doer, domExtractor *extractor.DomExtractor) *TvplFallback {
	return &TvplFallback{
		pageFetcher: pageFetcher{metadataSink: metadataSink, client: client, site: "tvpl"},
		extractor:   domExtractor,
	}
}

// FullText searches with each identifying field of doc in turn and
// extracts the first hit whose title is similar to that field. It reports
// false when no field finds a hit or the hit page has no body.
func (t *TvplFallback) FullText(ctx context.Context, doc *document.Document) (extractor.ExtractionResult, bool, failure.ClassifiedError) {
	for _, field := range doc.IdentifyingFields() {
		body, err := t.get(ctx, access.Get(tvplSearchPath, tvplSearchQuery(field.Value)))
		if err != nil {
			return extractor.ExtractionResult{}, false, err
		}
		hits, parseErr := ParseTvplSearch(body)
		if parseErr != nil {
			return extractor.ExtractionResult{}, false, t.parseFailed("TvplFallback.FullText", doc.ID, parseErr)
		}

		for _, hit := range hits {
			if !normalize.Similar(hit.Title, field.Value, TitleThreshold) {
				continue
			}
			return t.extract(ctx, hit.Href)
		}
	}
	return extractor.ExtractionResult{}, false, nil
}

func (t *TvplFallback) extract(ctx context.Context, href string) (extractor.ExtractionResult, bool, failure.ClassifiedError) {
	resp, err := t.fetch(ctx, access.Get(href, nil))
	if err != nil {
		return extractor.ExtractionResult{}, false, err
	}
	result, extractErr := t.extractor.Extract(resp.URL(), resp.Body(), extractor.SelectorsFor("tvpl"))
	if extractErr != nil {
		var e *extractor.ExtractionError
		if errors.As(extractErr, &e) && e.Cause == extractor.ErrCauseNoContent {
			return extractor.ExtractionResult{}, false, nil
		}
		return extractor.ExtractionResult{}, false, extractErr
	}
	return result, true, nil
}
