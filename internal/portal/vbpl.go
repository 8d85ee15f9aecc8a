package portal

import (
	"context"
	"errors"
	"strconv"

	"github.com/rohmanhakim/vnlaw-crawler/internal/access"
	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/internal/extractor"
	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
)

type VbplParam struct {
	// Collection is phapquy or hopnhat.
	Collection document.Collection
	PageSize   int
	// PDFBaseURL prefixes attachment paths.
	PDFBaseURL string
	// Fallback supplies the full text when the portal has none. Nil
	// disables it.
	Fallback FullTextSource
}

var _ Portal = (*VbplPortal)(nil)

// VbplPortal crawls the legal-instrument portal.
type VbplPortal struct {
	pageFetcher
	extractor *extractor.DomExtractor
	param     VbplParam
}

func NewVbplPortal(
	metadataSink metadata.MetadataSink,
	client access.Doer,
	domExtractor *extractor.DomExtractor,
	param VbplParam,
) *VbplPortal {
	if param.PageSize <= 0 {
		param.PageSize = DefaultVbplPageSize
	}
	if param.Collection == "" {
		param.Collection = document.CollectionPhapQuy
	}
	return &VbplPortal{
		pageFetcher: pageFetcher{metadataSink: metadataSink, client: client, site: string(document.SourceVBPL)},
		extractor:   domExtractor,
		param:       param,
	}
}

func (p *VbplPortal) Collection() document.Collection {
	return p.param.Collection
}

func (p *VbplPortal) PageSize() int {
	return p.param.PageSize
}

func (p *VbplPortal) Listing(ctx context.Context, page int) (ListingPage, failure.ClassifiedError) {
	return p.search(ctx, page, "")
}

func (p *VbplPortal) search(ctx context.Context, page int, keyword string) (ListingPage, failure.ClassifiedError) {
	body, err := p.get(ctx, access.Get(
		vbplListingPath(p.param.Collection),
		vbplListingQuery(page, p.param.PageSize, keyword),
	))
	if err != nil {
		return ListingPage{}, err
	}
	listing, parseErr := ParseVbplListing(body)
	if parseErr != nil {
		return ListingPage{}, p.parseFailed("VbplPortal.Listing", "page "+strconv.Itoa(page), parseErr)
	}
	return listing, nil
}

// Detail crawls the properties and full-text tabs of entry.
func (p *VbplPortal) Detail(ctx context.Context, entry ListingEntry) (Detail, failure.ClassifiedError) {
	doc := &document.Document{
		Source:     document.SourceVBPL,
		Collection: p.param.Collection,
		ID:         entry.ID,
		Title:      entry.Title,
		Subtitle:   entry.Subtitle,
	}
	detail := Detail{Document: doc}

	propertiesTab := tabProperties
	if p.param.Collection == document.CollectionHopNhat {
		propertiesTab = tabPropertiesHopNhat
	}
	body, err := p.get(ctx, access.Get(vbplTabPath(propertiesTab), itemQuery(entry.ID)))
	if err != nil {
		return Detail{}, err
	}
	props, parseErr := ParseVbplProperties(body, p.param.Collection)
	if parseErr != nil {
		return Detail{}, p.parseFailed("VbplPortal.Detail", entry.ID, parseErr)
	}
	props.ApplyTo(doc)
	for _, path := range props.AttachmentPaths {
		detail.AttachmentURLs = append(detail.AttachmentURLs, quoteURL(p.param.PDFBaseURL+path))
	}

	if p.param.Collection == document.CollectionHopNhat {
		if err := p.consolidatedPDF(ctx, &detail); err != nil {
			return Detail{}, err
		}
		// consolidated texts only have an outline through the fallback
		if err := p.fallback(ctx, &detail); err != nil {
			return Detail{}, err
		}
		return detail, nil
	}

	if err := p.fullText(ctx, &detail); err != nil {
		return Detail{}, err
	}
	return detail, nil
}

func (p *VbplPortal) fullText(ctx context.Context, detail *Detail) failure.ClassifiedError {
	id := detail.Document.ID
	resp, err := p.fetch(ctx, access.Get(vbplTabPath(tabFullText), itemQuery(id)))
	if err != nil {
		return err
	}

	result, extractErr := p.extractor.Extract(resp.URL(), resp.Body(), extractor.SelectorsFor("vbpl"))
	if extractErr != nil {
		var e *extractor.ExtractionError
		if errors.As(extractErr, &e) && e.Cause == extractor.ErrCauseNoContent {
			return p.fallback(ctx, detail)
		}
		return extractErr
	}
	if len(result.Blocks()) == 0 {
		return p.fallback(ctx, detail)
	}

	detail.Document.BodyHTML = result.ContainerHTML()
	detail.Blocks = result.Blocks()
	return nil
}

// consolidatedPDF adds the PDF shown in the viewer of a consolidated
// document, unless the properties tab already listed an attachment.
func (p *VbplPortal) consolidatedPDF(ctx context.Context, detail *Detail) failure.ClassifiedError {
	if len(detail.AttachmentURLs) > 0 {
		return nil
	}
	id := detail.Document.ID
	for _, tab := range []string{tabFullTextHopNhat, tabOriginalHopNhat} {
		body, err := p.get(ctx, access.Get(vbplTabPath(tab), itemQuery(id)))
		if err != nil {
			return err
		}
		path, found, parseErr := ParseVbplObjectPDF(body)
		if parseErr != nil {
			return p.parseFailed("VbplPortal.Detail", id, parseErr)
		}
		if found {
			detail.AttachmentURLs = append(detail.AttachmentURLs, p.param.PDFBaseURL+path)
			return nil
		}
	}
	return nil
}

func (p *VbplPortal) fallback(ctx context.Context, detail *Detail) failure.ClassifiedError {
	if p.param.Fallback == nil {
		return nil
	}
	result, found, err := p.param.Fallback.FullText(ctx, detail.Document)
	if err != nil {
		return err
	}
	if found {
		detail.Document.BodyHTML = result.ContainerHTML()
		detail.Blocks = result.Blocks()
	}
	return nil
}

func (p *VbplPortal) Related(ctx context.Context, id string) ([]document.Edge, failure.ClassifiedError) {
	body, err := p.get(ctx, access.Get(vbplTabPath(tabRelated), itemQuery(id)))
	if err != nil {
		return nil, err
	}
	refs, parseErr := ParseVbplRelated(body)
	if parseErr != nil {
		return nil, p.parseFailed("VbplPortal.Related", id, parseErr)
	}
	return toEdges(document.SourceVBPL, document.SpaceRelated, id, refs), nil
}

// CrossRefs reads the cross-reference map. Targets linked by title only
// are looked up with a keyword search and dropped when nothing is found.
func (p *VbplPortal) CrossRefs(ctx context.Context, id string) ([]document.Edge, failure.ClassifiedError) {
	tab := tabCrossRef
	if p.param.Collection == document.CollectionHopNhat {
		tab = tabCrossRefHopNhat
	}
	body, err := p.get(ctx, access.Get(vbplTabPath(tab), itemQuery(id)))
	if err != nil {
		return nil, err
	}

	var refs []CrossRef
	var parseErr *ParseError
	if p.param.Collection == document.CollectionHopNhat {
		refs, parseErr = ParseHopNhatCrossRef(body)
	} else {
		refs, parseErr = ParsePhapQuyCrossRef(body)
	}
	if parseErr != nil {
		return nil, p.parseFailed("VbplPortal.CrossRefs", id, parseErr)
	}

	for i, ref := range refs {
		if ref.TargetID != "" || ref.TargetTitle == "" {
			continue
		}
		hits, err := p.search(ctx, 1, ref.TargetTitle)
		if err != nil {
			return nil, err
		}
		if len(hits.Entries) > 0 {
			refs[i].TargetID = hits.Entries[0].ID
		}
	}
	return toEdges(document.SourceVBPL, document.SpaceCrossRef, id, refs), nil
}
