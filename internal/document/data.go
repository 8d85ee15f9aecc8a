// Package document holds the record types shared by every crawl stage.
package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/internal/outline"
)

type Source string

const (
	SourceVBPL Source = "vbpl"
	SourceAnle Source = "anle"
)

func ParseSource(s string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case SourceVBPL:
		return SourceVBPL, nil
	case SourceAnle:
		return SourceAnle, nil
	}
	return "", fmt.Errorf("unknown source %q", s)
}

type Kind string

const (
	KindLegalInstrument Kind = "legal_instrument"
	KindCaseLaw         Kind = "case_law"
)

// Collection is one listing a crawl pass walks.
type Collection string

const (
	// normative legal documents
	CollectionPhapQuy Collection = "phapquy"
	// consolidated documents
	CollectionHopNhat Collection = "hopnhat"
	// case-law precedents
	CollectionAnle Collection = "anle"
)

func ParseCollection(s string) (Collection, error) {
	switch Collection(strings.ToLower(strings.TrimSpace(s))) {
	case CollectionPhapQuy:
		return CollectionPhapQuy, nil
	case CollectionHopNhat:
		return CollectionHopNhat, nil
	case CollectionAnle:
		return CollectionAnle, nil
	}
	return "", fmt.Errorf("unknown collection %q (want phapquy, hopnhat or anle)", s)
}

func (c Collection) Source() Source {
	if c == CollectionAnle {
		return SourceAnle
	}
	return SourceVBPL
}

func (c Collection) Kind() Kind {
	if c == CollectionAnle {
		return KindCaseLaw
	}
	return KindLegalInstrument
}

// Key identifies a document. There is at most one Document per Key.
type Key struct {
	Source Source
	ID     string
}

func (k Key) String() string {
	return string(k.Source) + ":" + k.ID
}

// Status labels as published by the portals.
const (
	StatusNotYetEffective = "Chưa có hiệu lực"
	StatusInEffect        = "Có hiệu lực"
	StatusExpired         = "Hết hiệu lực"
)

// DefaultSector is assigned when no registry match supplies one.
const DefaultSector = "Lĩnh vực khác"

// Dates are the lifecycle dates of a document. Any of them may be absent.
type Dates struct {
	Issuance    *time.Time
	Effective   *time.Time
	Expiration  *time.Time
	Gazette     *time.Time
	Adoption    *time.Time
	Publication *time.Time
	Application *time.Time
}

// Document is the union of the legal-instrument and case-law records.
// Fields a kind does not carry stay zero.
type Document struct {
	Source     Source
	Collection Collection
	ID         string

	Title                 string
	Subtitle              string
	SerialNumber          string
	DocType               string
	IssuingAuthority      string
	ApplicableInformation string
	PublicationDecision   string
	State                 string
	Sector                string

	Dates Dates

	BodyHTML    string
	Attachments []AttachmentRef
	Outline     []outline.Article

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d *Document) Key() Key {
	return Key{Source: d.Source, ID: d.ID}
}

func (d *Document) Kind() Kind {
	return d.Collection.Kind()
}

func (d *Document) HasAttachment() bool {
	return len(d.Attachments) > 0
}

// IdentifyingFields returns title, subtitle and serial number in the order
// registry lookups try them, skipping blanks.
func (d *Document) IdentifyingFields() []IdentifyingField {
	fields := make([]IdentifyingField, 0, 3)
	for _, f := range []IdentifyingField{
		{Name: "title", Value: d.Title},
		{Name: "subtitle", Value: d.Subtitle},
		{Name: "serial_number", Value: d.SerialNumber},
	} {
		if strings.TrimSpace(f.Value) != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

type IdentifyingField struct {
	Name  string
	Value string
}

// DeriveStatus computes the lifecycle status at now.
// A future effective date means not yet effective; otherwise the document
// is in effect until its expiration date passes.
func DeriveStatus(effective, expiration *time.Time, now time.Time) string {
	if effective != nil && effective.After(now) {
		return StatusNotYetEffective
	}
	if expiration == nil || expiration.After(now) {
		return StatusInEffect
	}
	return StatusExpired
}

// PromoteIfEffective moves a "not yet effective" document to "in effect"
// once its effective date has passed. It reports whether State changed.
func (d *Document) PromoteIfEffective(now time.Time) bool {
	if d.State != StatusNotYetEffective || d.Dates.Effective == nil {
		return false
	}
	if d.Dates.Effective.After(now) {
		return false
	}
	d.State = StatusInEffect
	return true
}
