package portal

import (
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
)

// ListingEntry is one document link on a listing page.
type ListingEntry struct {
	ID       string
	Title    string
	Subtitle string
}

type ListingPage struct {
	// Total is the item count printed in the page header. It is only
	// meaningful when TotalKnown is set.
	Total      int
	TotalKnown bool
	Entries    []ListingEntry
}

// Detail is everything one detail crawl learned about a document.
type Detail struct {
	Document *document.Document
	// Blocks are the full-text blocks the outline is parsed from. Nil when
	// no full text was found or the kind has none.
	Blocks []string
	// AttachmentURLs are absolute, in page order.
	AttachmentURLs []string
}

// VbplProperties is the content of a vbpl properties tab.
type VbplProperties struct {
	Title                 string
	Subtitle              string
	SerialNumber          string
	DocType               string
	IssuingAuthority      string
	ApplicableInformation string
	State                 string
	Issuance              *time.Time
	Effective             *time.Time
	Expiration            *time.Time
	Gazette               *time.Time
	// AttachmentPaths are relative to the vbpl file host.
	AttachmentPaths []string
}

// ApplyTo copies the non-empty properties onto doc.
func (p VbplProperties) ApplyTo(doc *document.Document) {
	setString(&doc.Title, p.Title)
	setString(&doc.Subtitle, p.Subtitle)
	setString(&doc.SerialNumber, p.SerialNumber)
	setString(&doc.DocType, p.DocType)
	setString(&doc.IssuingAuthority, p.IssuingAuthority)
	setString(&doc.ApplicableInformation, p.ApplicableInformation)
	setString(&doc.State, p.State)
	setDate(&doc.Dates.Issuance, p.Issuance)
	setDate(&doc.Dates.Effective, p.Effective)
	setDate(&doc.Dates.Expiration, p.Expiration)
	setDate(&doc.Dates.Gazette, p.Gazette)
}

// AnleDetail is the content of a case-law detail page.
type AnleDetail struct {
	SerialNumber        string
	Title               string
	PublicationDecision string
	Sector              string
	State               string
	Adoption            *time.Time
	Publication         *time.Time
	Application         *time.Time
	// AttachmentPaths are relative to the case-law portal.
	AttachmentPaths []string
}

func (a AnleDetail) ApplyTo(doc *document.Document) {
	setString(&doc.SerialNumber, a.SerialNumber)
	setString(&doc.Title, a.Title)
	setString(&doc.PublicationDecision, a.PublicationDecision)
	setString(&doc.Sector, a.Sector)
	setString(&doc.State, a.State)
	setDate(&doc.Dates.Adoption, a.Adoption)
	setDate(&doc.Dates.Publication, a.Publication)
	setDate(&doc.Dates.Application, a.Application)
}

// CrossRef is one entry of a cross-reference map. TargetID is empty when
// the map links to the target by title only.
type CrossRef struct {
	Label       string
	TargetID    string
	TargetTitle string
}

// SearchHit is one result of a full-text search.
type SearchHit struct {
	Title string
	Href  string
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDate(dst **time.Time, v *time.Time) {
	if v != nil {
		*dst = v
	}
}
