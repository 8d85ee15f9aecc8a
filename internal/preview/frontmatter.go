package preview

import (
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
)

type frontMatter struct {
	ID                    string   `yaml:"id"`
	Source                string   `yaml:"source"`
	Collection            string   `yaml:"collection,omitempty"`
	Title                 string   `yaml:"title"`
	Subtitle              string   `yaml:"subtitle,omitempty"`
	SerialNumber          string   `yaml:"serial_number,omitempty"`
	DocType               string   `yaml:"doc_type,omitempty"`
	IssuingAuthority      string   `yaml:"issuing_authority,omitempty"`
	ApplicableInformation string   `yaml:"applicable_information,omitempty"`
	PublicationDecision   string   `yaml:"publication_decision,omitempty"`
	State                 string   `yaml:"state,omitempty"`
	Sector                string   `yaml:"sector,omitempty"`
	Issued                string   `yaml:"issued,omitempty"`
	Effective             string   `yaml:"effective,omitempty"`
	Expiration            string   `yaml:"expiration,omitempty"`
	Adoption              string   `yaml:"adoption,omitempty"`
	Publication           string   `yaml:"publication,omitempty"`
	Application           string   `yaml:"application,omitempty"`
	Attachments           []string `yaml:"attachments,omitempty"`
	Articles              int      `yaml:"articles,omitempty"`
}

func newFrontMatter(doc *document.Document) frontMatter {
	fm := frontMatter{
		ID:                    doc.ID,
		Source:                string(doc.Source),
		Collection:            string(doc.Collection),
		Title:                 doc.Title,
		Subtitle:              doc.Subtitle,
		SerialNumber:          doc.SerialNumber,
		DocType:               doc.DocType,
		IssuingAuthority:      doc.IssuingAuthority,
		ApplicableInformation: doc.ApplicableInformation,
		PublicationDecision:   doc.PublicationDecision,
		State:                 doc.State,
		Sector:                doc.Sector,
		Issued:                day(doc.Dates.Issuance),
		Effective:             day(doc.Dates.Effective),
		Expiration:            day(doc.Dates.Expiration),
		Adoption:              day(doc.Dates.Adoption),
		Publication:           day(doc.Dates.Publication),
		Application:           day(doc.Dates.Application),
		Articles:              len(doc.Outline),
	}
	for _, a := range doc.Attachments {
		if a.LocalPath != "" {
			fm.Attachments = append(fm.Attachments, a.LocalPath)
			continue
		}
		fm.Attachments = append(fm.Attachments, a.RemoteURL)
	}
	return fm
}

func day(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}
