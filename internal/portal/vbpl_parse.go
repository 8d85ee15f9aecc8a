package portal

import (
	"bytes"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/internal/normalize"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/urlutil"
)

const (
	emptyRelatedMessage = "Nội dung đang cập nhật"
	downloadFilePrefix  = "javascript:downloadfile("
	stateLabel          = "Hiệu lực:"
	expirationLabel     = "Ngày hết hiệu lực:"
)

var (
	itemIDPattern     = regexp.MustCompile(`ItemID=(\d+)`)
	numericID         = regexp.MustCompile(`^\d+$`)
	attachmentPattern = regexp.MustCompile(`(?i).+\.(pdf|docx?)`)
	objectPDFPattern  = regexp.MustCompile(`.+\.pdf`)
)

// vbplPropertyLabels maps the label cells of the properties table onto
// fields. Consolidated documents label some rows differently.
var vbplPropertyLabels = map[document.Collection][]labelField{
	document.CollectionPhapQuy: {
		{"Số ký hiệu", fieldSerialNumber},
		{"Ngày ban hành", fieldIssuance},
		{"Ngày có hiệu lực", fieldEffective},
		{"Ngày đăng công báo", fieldGazette},
		{"Cơ quan ban hành", fieldIssuingAuthority},
		{"Thông tin áp dụng", fieldApplicableInformation},
		{"Loại văn bản", fieldDocType},
	},
	document.CollectionHopNhat: {
		{"Số ký hiệu", fieldSerialNumber},
		{"Ngày xác thực", fieldEffective},
		{"Ngày đăng công báo", fieldGazette},
		{"Cơ quan ban hành", fieldIssuingAuthority},
		{"Loại VB được sửa đổi bổ sung", fieldDocType},
	},
}

type propertyField int

const (
	fieldSerialNumber propertyField = iota
	fieldIssuance
	fieldEffective
	fieldGazette
	fieldIssuingAuthority
	fieldApplicableInformation
	fieldDocType
)

type labelField struct {
	label string
	field propertyField
}

func parseHTML(body []byte) (*goquery.Document, *ParseError) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseNotHTML,
		}
	}
	return doc, nil
}

func text(s *goquery.Selection) string {
	return normalize.Text(s.Text())
}

// ItemID returns the vbpl document ID in href, or "". The query key is
// matched case-insensitively; script links are scanned for ItemID=.
func ItemID(href string) string {
	if u, ok := urlutil.Resolve(url.URL{}, href); ok {
		if id := urlutil.QueryValue(u, "ItemID"); numericID.MatchString(id) {
			return id
		}
	}
	if m := itemIDPattern.FindStringSubmatch(href); m != nil {
		return m[1]
	}
	return ""
}

// ParseVbplListing reads one page of a vbpl search control. The total
// count is optional; entries without an ItemID are skipped.
func ParseVbplListing(body []byte) (ListingPage, *ParseError) {
	doc, err := parseHTML(body)
	if err != nil {
		return ListingPage{}, err
	}

	var page ListingPage
	if strong := doc.Find("div.message strong").First(); strong.Length() > 0 {
		total, convErr := strconv.Atoi(strings.ReplaceAll(text(strong), ".", ""))
		if convErr != nil {
			return ListingPage{}, &ParseError{
				Message:   "total count " + strconv.Quote(text(strong)),
				Retryable: false,
				Cause:     ErrCauseBadValue,
			}
		}
		page.Total, page.TotalKnown = total, true
	}

	subtitles := doc.Find("div.des")
	doc.Find("p.title").Each(func(i int, title *goquery.Selection) {
		link := title.Find("a").First()
		href, _ := link.Attr("href")
		id := ItemID(href)
		if id == "" {
			return
		}
		entry := ListingEntry{ID: id, Title: text(link)}
		if i < subtitles.Length() {
			entry.Subtitle = text(subtitles.Eq(i))
		}
		page.Entries = append(page.Entries, entry)
	})
	return page, nil
}

// ParseVbplProperties reads a properties tab. Dates that do not parse as
// dd/mm/yyyy are left absent.
func ParseVbplProperties(body []byte, collection document.Collection) (VbplProperties, *ParseError) {
	doc, err := parseHTML(body)
	if err != nil {
		return VbplProperties{}, err
	}

	table := doc.Find("div.vbProperties").First()
	if table.Length() == 0 {
		return VbplProperties{}, missing("div.vbProperties")
	}

	var props VbplProperties
	props.Title = text(doc.Find(`div.box-map a[href=""]`).First())
	props.Subtitle = text(doc.Find("td.title").First())

	seen := make(map[propertyField]bool)
	table.Find("tr td").Each(func(_ int, cell *goquery.Selection) {
		label := text(cell)
		value := cell.NextFiltered("td")
		if value.Length() == 0 {
			return
		}
		for _, lf := range vbplPropertyLabels[collection] {
			if seen[lf.field] || !strings.Contains(label, lf.label) {
				continue
			}
			seen[lf.field] = true
			props.set(lf.field, text(value))
		}
	})

	doc.Find("div.vbInfo li").Each(func(_ int, li *goquery.Selection) {
		line := text(li)
		switch {
		case strings.HasPrefix(line, stateLabel):
			props.State = strings.TrimSpace(strings.TrimPrefix(line, stateLabel))
		case strings.HasPrefix(line, expirationLabel):
			props.Expiration = normalize.ParseDMY(strings.TrimPrefix(line, expirationLabel))
		}
	})

	doc.Find("ul.fileAttack li").Each(func(_ int, li *goquery.Selection) {
		link := li.Find("a").First()
		if link.Length() == 0 || !attachmentPattern.MatchString(text(link)) {
			return
		}
		href, _ := link.Attr("href")
		if path := downloadPath(href); path != "" {
			props.AttachmentPaths = append(props.AttachmentPaths, path)
		}
	})

	return props, nil
}

func (p *VbplProperties) set(field propertyField, value string) {
	switch field {
	case fieldSerialNumber:
		p.SerialNumber = value
	case fieldIssuance:
		p.Issuance = normalize.ParseDMY(value)
	case fieldEffective:
		p.Effective = normalize.ParseDMY(value)
	case fieldGazette:
		p.Gazette = normalize.ParseDMY(value)
	case fieldIssuingAuthority:
		p.IssuingAuthority = value
	case fieldApplicableInformation:
		p.ApplicableInformation = value
	case fieldDocType:
		p.DocType = value
	}
}

// downloadPath unwraps javascript:downloadfile('name','path') links to
// their second argument. Plain hrefs are returned as they are.
func downloadPath(href string) string {
	href = strings.TrimSpace(href)
	if !strings.HasPrefix(href, downloadFilePrefix) {
		return href
	}
	args := strings.TrimSuffix(strings.TrimSuffix(strings.TrimPrefix(href, downloadFilePrefix), ";"), ")")
	parts := strings.Split(args, ",")
	if len(parts) < 2 {
		return ""
	}
	return strings.Trim(strings.TrimSpace(parts[1]), `'"`)
}

// ParseVbplObjectPDF returns the PDF path embedded in the viewer object of
// a consolidated full-text tab.
func ParseVbplObjectPDF(body []byte) (string, bool, *ParseError) {
	doc, err := parseHTML(body)
	if err != nil {
		return "", false, err
	}
	view := doc.Find("div.vbProperties").First()
	if view.Length() == 0 {
		return "", false, missing("div.vbProperties")
	}
	data, ok := view.Find("object").First().Attr("data")
	if !ok {
		return "", false, nil
	}
	path := objectPDFPattern.FindString(data)
	return path, path != "", nil
}

// ParseVbplRelated reads the related-documents tab. A missing block or the
// "being updated" placeholder yields no relations.
func ParseVbplRelated(body []byte) ([]CrossRef, *ParseError) {
	doc, err := parseHTML(body)
	if err != nil {
		return nil, err
	}
	block := doc.Find("div.vbLienQuan").First()
	if block.Length() == 0 || strings.Contains(text(block), emptyRelatedMessage) {
		return nil, nil
	}

	var relations []CrossRef
	block.Find("td.label").Each(func(_ int, label *goquery.Selection) {
		name := text(label)
		label.NextFiltered("td").Find("ul.listVB p.title a").Each(func(_ int, link *goquery.Selection) {
			href, _ := link.Attr("href")
			if id := ItemID(href); id != "" {
				relations = append(relations, CrossRef{Label: name, TargetID: id, TargetTitle: text(link)})
			}
		})
	})
	return relations, nil
}

// ParsePhapQuyCrossRef reads the cross-reference map of a normative
// document. Links without an ItemID keep only their title.
func ParsePhapQuyCrossRef(body []byte) ([]CrossRef, *ParseError) {
	doc, err := parseHTML(body)
	if err != nil {
		return nil, err
	}

	var refs []CrossRef
	doc.Find(`div[class*="title"]`).Each(func(_ int, title *goquery.Selection) {
		label := text(title)
		title.NextAllFiltered("div").First().Find("li").Each(func(_ int, li *goquery.Selection) {
			link := li.Find("a").First()
			if link.Length() == 0 {
				return
			}
			href, _ := link.Attr("href")
			refs = append(refs, CrossRef{
				Label:       label,
				TargetID:    ItemID(href),
				TargetTitle: text(link),
			})
		})
	})
	return refs, nil
}

// ParseHopNhatCrossRef reads the map of a consolidated document. The last
// entry is the document itself and is left out.
func ParseHopNhatCrossRef(body []byte) ([]CrossRef, *ParseError) {
	doc, err := parseHTML(body)
	if err != nil {
		return nil, err
	}
	nodes := doc.Find("div.w")
	if nodes.Length() <= 1 {
		return nil, nil
	}

	var refs []CrossRef
	nodes.Slice(0, nodes.Length()-1).Each(func(_ int, node *goquery.Selection) {
		link := node.Find("a").First()
		href, _ := link.Attr("href")
		if id := ItemID(href); id != "" {
			refs = append(refs, CrossRef{Label: document.LabelConsolidated, TargetID: id, TargetTitle: text(link)})
		}
	})
	return refs, nil
}

// quoteURL percent-encodes everything but unreserved characters and
// "/:?", the form the vbpl file host expects.
func quoteURL(s string) string {
	const upperhex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) || c == '/' || c == ':' || c == '?' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') ||
		c == '-' || c == '_' || c == '.' || c == '~'
}
