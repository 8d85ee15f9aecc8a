package portal

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/internal/access"
	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/urlutil"
)

const defaultAnleTimeout = 30 * time.Second

type AnleParam struct {
	// BaseURL prefixes attachment links, which the portal prints
	// host-relative.
	BaseURL string
	// Timeout bounds each request. The portal is slow and its
	// certificate chain does not validate, so every call is insecure.
	Timeout time.Duration
}

var _ Portal = (*AnlePortal)(nil)

// AnlePortal crawls the case-law portal.
type AnlePortal struct {
	pageFetcher
	param AnleParam
}

func NewAnlePortal(metadataSink metadata.MetadataSink, client access.Doer, param AnleParam) *AnlePortal {
	if param.Timeout <= 0 {
		param.Timeout = defaultAnleTimeout
	}
	param.BaseURL = strings.TrimRight(param.BaseURL, "/")
	return &AnlePortal{
		pageFetcher: pageFetcher{metadataSink: metadataSink, client: client, site: string(document.SourceAnle)},
		param:       param,
	}
}

func (p *AnlePortal) Collection() document.Collection {
	return document.CollectionAnle
}

func (p *AnlePortal) PageSize() int {
	return AnlePageSize
}

func (p *AnlePortal) request(path string, query url.Values) access.Request {
	req := access.Get(path, query)
	req.Insecure = true
	req.Timeout = p.param.Timeout
	return req
}

func (p *AnlePortal) Listing(ctx context.Context, page int) (ListingPage, failure.ClassifiedError) {
	body, err := p.get(ctx, p.request(anleListingPath, anleListingQuery(page)))
	if err != nil {
		return ListingPage{}, err
	}
	listing, parseErr := ParseAnleListing(body)
	if parseErr != nil {
		return ListingPage{}, p.parseFailed("AnlePortal.Listing", "page "+strconv.Itoa(page), parseErr)
	}
	return listing, nil
}

// Detail reads the attribute table. Case law has no outline, so the
// returned detail never carries blocks.
func (p *AnlePortal) Detail(ctx context.Context, entry ListingEntry) (Detail, failure.ClassifiedError) {
	body, err := p.get(ctx, p.request(anleDetailPath, anleDetailQuery(entry.ID)))
	if err != nil {
		return Detail{}, err
	}
	parsed, parseErr := ParseAnleDetail(body)
	if parseErr != nil {
		return Detail{}, p.parseFailed("AnlePortal.Detail", entry.ID, parseErr)
	}

	doc := &document.Document{
		Source:     document.SourceAnle,
		Collection: document.CollectionAnle,
		ID:         entry.ID,
		Title:      entry.Title,
	}
	parsed.ApplyTo(doc)

	detail := Detail{Document: doc}
	for _, path := range parsed.AttachmentPaths {
		detail.AttachmentURLs = append(detail.AttachmentURLs, p.attachmentURL(path))
	}
	return detail, nil
}

func (p *AnlePortal) attachmentURL(path string) string {
	base, err := url.Parse(p.param.BaseURL)
	if err != nil {
		return p.param.BaseURL + path
	}
	if u, ok := urlutil.Resolve(*base, path); ok {
		return u.String()
	}
	return p.param.BaseURL + path
}

func (p *AnlePortal) Related(context.Context, string) ([]document.Edge, failure.ClassifiedError) {
	return nil, nil
}

func (p *AnlePortal) CrossRefs(context.Context, string) ([]document.Edge, failure.ClassifiedError) {
	return nil, nil
}
