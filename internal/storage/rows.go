package storage

import (
	"encoding/json"
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/internal/outline"
)

type documentRow struct {
	Source                string     `db:"source"`
	ID                    string     `db:"id"`
	Collection            string     `db:"collection"`
	Title                 string     `db:"title"`
	Subtitle              string     `db:"subtitle"`
	SerialNumber          string     `db:"serial_number"`
	DocType               string     `db:"doc_type"`
	IssuingAuthority      string     `db:"issuing_authority"`
	ApplicableInformation string     `db:"applicable_information"`
	PublicationDecision   string     `db:"publication_decision"`
	State                 string     `db:"state"`
	Sector                string     `db:"sector"`
	IssuanceDate          *time.Time `db:"issuance_date"`
	EffectiveDate         *time.Time `db:"effective_date"`
	ExpirationDate        *time.Time `db:"expiration_date"`
	GazetteDate           *time.Time `db:"gazette_date"`
	AdoptionDate          *time.Time `db:"adoption_date"`
	PublicationDate       *time.Time `db:"publication_date"`
	ApplicationDate       *time.Time `db:"application_date"`
	BodyHTML              string     `db:"body_html"`
	Attachments           []byte     `db:"attachments"`
	CreatedAt             time.Time  `db:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at"`
}

const documentColumns = `source, id, collection, title, subtitle, serial_number, doc_type,
	issuing_authority, applicable_information, publication_decision, state, sector,
	issuance_date, effective_date, expiration_date, gazette_date, adoption_date,
	publication_date, application_date, body_html, attachments, created_at, updated_at`

// attachmentJSON is the stored shape of document.AttachmentRef.
type attachmentJSON struct {
	RemoteURL string `json:"remote_url"`
	LocalName string `json:"local_name,omitempty"`
	LocalPath string `json:"local_path,omitempty"`
	Kind      string `json:"kind,omitempty"`
	Status    string `json:"status"`
	Hash      string `json:"hash,omitempty"`
}

func toDocumentRow(doc *document.Document) (documentRow, error) {
	attachments := make([]attachmentJSON, 0, len(doc.Attachments))
	for _, a := range doc.Attachments {
		attachments = append(attachments, attachmentJSON{
			RemoteURL: a.RemoteURL,
			LocalName: a.LocalName,
			LocalPath: a.LocalPath,
			Kind:      string(a.Kind),
			Status:    string(a.Status),
			Hash:      a.Hash,
		})
	}
	encoded, err := json.Marshal(attachments)
	if err != nil {
		return documentRow{}, err
	}
	return documentRow{
		Source:                string(doc.Source),
		ID:                    doc.ID,
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
		IssuanceDate:          doc.Dates.Issuance,
		EffectiveDate:         doc.Dates.Effective,
		ExpirationDate:        doc.Dates.Expiration,
		GazetteDate:           doc.Dates.Gazette,
		AdoptionDate:          doc.Dates.Adoption,
		PublicationDate:       doc.Dates.Publication,
		ApplicationDate:       doc.Dates.Application,
		BodyHTML:              doc.BodyHTML,
		Attachments:           encoded,
	}, nil
}

func (r documentRow) toDocument() (*document.Document, error) {
	var attachments []attachmentJSON
	if len(r.Attachments) > 0 {
		if err := json.Unmarshal(r.Attachments, &attachments); err != nil {
			return nil, err
		}
	}
	doc := &document.Document{
		Source:                document.Source(r.Source),
		Collection:            document.Collection(r.Collection),
		ID:                    r.ID,
		Title:                 r.Title,
		Subtitle:              r.Subtitle,
		SerialNumber:          r.SerialNumber,
		DocType:               r.DocType,
		IssuingAuthority:      r.IssuingAuthority,
		ApplicableInformation: r.ApplicableInformation,
		PublicationDecision:   r.PublicationDecision,
		State:                 r.State,
		Sector:                r.Sector,
		Dates: document.Dates{
			Issuance:    r.IssuanceDate,
			Effective:   r.EffectiveDate,
			Expiration:  r.ExpirationDate,
			Gazette:     r.GazetteDate,
			Adoption:    r.AdoptionDate,
			Publication: r.PublicationDate,
			Application: r.ApplicationDate,
		},
		BodyHTML:  r.BodyHTML,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	for _, a := range attachments {
		doc.Attachments = append(doc.Attachments, document.AttachmentRef{
			RemoteURL: a.RemoteURL,
			LocalName: a.LocalName,
			LocalPath: a.LocalPath,
			Kind:      document.BinaryKind(a.Kind),
			Status:    document.AttachmentStatus(a.Status),
			Hash:      a.Hash,
		})
	}
	return doc, nil
}

type articleRow struct {
	Source     string  `db:"source"`
	DocumentID string  `db:"document_id"`
	Seq        int     `db:"seq"`
	Number     int     `db:"number"`
	Name       *string `db:"name"`
	Body       string  `db:"body"`
	Position   []byte  `db:"position"`
}

type headingJSON struct {
	Number string  `json:"number"`
	Name   *string `json:"name,omitempty"`
}

type positionJSON struct {
	BigPart     *headingJSON `json:"big_part,omitempty"`
	Chapter     *headingJSON `json:"chapter,omitempty"`
	PartSection *headingJSON `json:"part_section,omitempty"`
	MiniPart    *headingJSON `json:"mini_part,omitempty"`
}

func toArticleRow(key document.Key, seq int, a outline.Article) (articleRow, error) {
	position, err := json.Marshal(positionJSON{
		BigPart:     toHeadingJSON(a.Position.BigPart),
		Chapter:     toHeadingJSON(a.Position.Chapter),
		PartSection: toHeadingJSON(a.Position.PartSection),
		MiniPart:    toHeadingJSON(a.Position.MiniPart),
	})
	if err != nil {
		return articleRow{}, err
	}
	return articleRow{
		Source:     string(key.Source),
		DocumentID: key.ID,
		Seq:        seq,
		Number:     a.Number,
		Name:       a.Name,
		Body:       a.Body,
		Position:   position,
	}, nil
}

func (r articleRow) toArticle() (outline.Article, error) {
	var p positionJSON
	if len(r.Position) > 0 {
		if err := json.Unmarshal(r.Position, &p); err != nil {
			return outline.Article{}, err
		}
	}
	return outline.Article{
		Number: r.Number,
		Name:   r.Name,
		Body:   r.Body,
		Position: outline.Position{
			BigPart:     fromHeadingJSON(p.BigPart),
			Chapter:     fromHeadingJSON(p.Chapter),
			PartSection: fromHeadingJSON(p.PartSection),
			MiniPart:    fromHeadingJSON(p.MiniPart),
		},
	}, nil
}

func toHeadingJSON(h *outline.Heading) *headingJSON {
	if h == nil {
		return nil
	}
	return &headingJSON{Number: h.Number, Name: h.Name}
}

func fromHeadingJSON(h *headingJSON) *outline.Heading {
	if h == nil {
		return nil
	}
	return &outline.Heading{Number: h.Number, Name: h.Name}
}

type edgeRow struct {
	Source   string `db:"source"`
	Space    string `db:"space"`
	SourceID string `db:"source_id"`
	TargetID string `db:"target_id"`
	Label    string `db:"label"`
}

func toEdgeRow(e document.Edge) edgeRow {
	return edgeRow{
		Source:   string(e.Source),
		Space:    string(e.Space),
		SourceID: e.SourceID,
		TargetID: e.TargetID,
		Label:    e.Label,
	}
}

func (r edgeRow) toEdge() document.Edge {
	return document.Edge{
		Source:   document.Source(r.Source),
		Space:    document.EdgeSpace(r.Space),
		SourceID: r.SourceID,
		TargetID: r.TargetID,
		Label:    r.Label,
	}
}
