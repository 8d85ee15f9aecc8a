package enrich

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/internal/access"
	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
)

const (
	searchPath  = "/documents/search"
	slugPath    = "/documents/slug/"
	searchLimit = 5
)

// searchFields is the projection requested from the search endpoint.
var searchFields = strings.Join([]string{
	"active", "slug", "key", "name", "number",
	"type{}", "branches{}", "issuingAgency{}",
	"issueDate", "effectiveDate", "expiryDate",
	"gazetteNumber", "gazetteDate", "createdAt",
}, ",")

// Registry is the canonical document registry.
type Registry interface {
	Search(ctx context.Context, query SearchQuery) ([]Candidate, failure.ClassifiedError)
	// File returns the original PDF of the document at slug. It reports
	// false when the registry has none.
	File(ctx context.Context, slug string) (RegistryFile, bool, failure.ClassifiedError)
}

var _ Registry = (*ConcettiClient)(nil)

// ConcettiClient talks to the registry's JSON API.
type ConcettiClient struct {
	metadataSink metadata.MetadataSink
	client       access.Doer
	baseURL      string
}

// NewConcettiClient expects client to resolve relative paths against
// baseURL. baseURL itself is needed to build absolute file links.
func NewConcettiClient(metadataSink metadata.MetadataSink, client access.Doer, baseURL string) *ConcettiClient {
	return &ConcettiClient{
		metadataSink: metadataSink,
		client:       client,
		baseURL:      strings.TrimRight(baseURL, "/"),
	}
}

func (c *ConcettiClient) Search(ctx context.Context, query SearchQuery) ([]Candidate, failure.ClassifiedError) {
	params := url.Values{
		"target": {"document"},
		"sort":   {"keyword"},
		"limit":  {strconv.Itoa(searchLimit)},
		"select": {searchFields},
		"key":    {query.Key},
		"page":   {strconv.Itoa(query.Page)},
	}
	setDateHint(params, "issueDateFrom", query.IssuedFrom)
	setDateHint(params, "effectiveDateFrom", query.EffectiveFrom)
	setDateHint(params, "expiryDateFrom", query.ExpiryFrom)

	var body struct {
		Items []Candidate `json:"items"`
	}
	if err := c.getJSON(ctx, "ConcettiClient.Search", searchPath, params, &body); err != nil {
		return nil, err
	}
	return body.Items, nil
}

func (c *ConcettiClient) File(ctx context.Context, slug string) (RegistryFile, bool, failure.ClassifiedError) {
	var body struct {
		PDFFile *json.RawMessage `json:"pdfFile"`
	}
	if err := c.getJSON(ctx, "ConcettiClient.File", slugPath+url.PathEscape(slug), nil, &body); err != nil {
		return RegistryFile{}, false, err
	}
	id := fileID(body.PDFFile)
	if id == "" {
		return RegistryFile{}, false, nil
	}
	return RegistryFile{
		ID:  id,
		URL: c.baseURL + "/files/" + url.PathEscape(id) + "/fetch",
	}, true, nil
}

// fileID accepts the pdfFile reference as a JSON string or number.
func fileID(raw *json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(*raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(*raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func (c *ConcettiClient) getJSON(ctx context.Context, action, path string, query url.Values, out any) failure.ClassifiedError {
	resp, err := c.client.Do(ctx, access.Get(path, query))
	if err != nil {
		return c.fail(action, path, &EnrichError{
			Message:   err.Error(),
			Retryable: err.Severity() == failure.SeverityRecoverable,
			Cause:     ErrCauseRegistry,
		})
	}
	if decodeErr := json.Unmarshal(resp.Body(), out); decodeErr != nil {
		return c.fail(action, path, &EnrichError{
			Message:   decodeErr.Error(),
			Retryable: false,
			Cause:     ErrCauseDecode,
		})
	}
	return nil
}

func (c *ConcettiClient) fail(action, path string, err *EnrichError) *EnrichError {
	c.metadataSink.RecordError(
		time.Now(),
		"enrich",
		action,
		mapEnrichErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, c.baseURL+path),
		},
	)
	return err
}

func setDateHint(params url.Values, key string, t *time.Time) {
	if t != nil {
		params.Set(key, t.Format(time.DateOnly))
	}
}
