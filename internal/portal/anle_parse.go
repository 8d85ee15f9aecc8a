package portal

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/vnlaw-crawler/internal/normalize"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/urlutil"
)

// ParseAnleListing reads one page of the case-law listing. The ID of an
// entry is the dDocName of its link.
func ParseAnleListing(body []byte) (ListingPage, *ParseError) {
	doc, err := parseHTML(body)
	if err != nil {
		return ListingPage{}, err
	}

	var page ListingPage
	if counter := doc.Find(`span[style="color: #2673b4"]`).First(); counter.Length() > 0 {
		total, convErr := strconv.Atoi(text(counter))
		if convErr != nil {
			return ListingPage{}, &ParseError{
				Message:   "total count " + strconv.Quote(text(counter)),
				Retryable: false,
				Cause:     ErrCauseBadValue,
			}
		}
		page.Total, page.TotalKnown = total, true
	}

	doc.Find("a.thuoctinh-hover[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		id := docName(href)
		if id == "" {
			return
		}
		page.Entries = append(page.Entries, ListingEntry{
			ID:    id,
			Title: text(link),
		})
	})
	return page, nil
}

// ParseAnleDetail reads the attribute table and download links of a
// case-law detail page.
func ParseAnleDetail(body []byte) (AnleDetail, *ParseError) {
	doc, err := parseHTML(body)
	if err != nil {
		return AnleDetail{}, err
	}

	table := doc.Find("div#thuoctinh").First()
	if table.Length() == 0 {
		return AnleDetail{}, missing("div#thuoctinh")
	}

	var detail AnleDetail
	table.Find("th").Each(func(_ int, header *goquery.Selection) {
		label := text(header)
		cell := header.NextFiltered("td")
		if cell.Length() == 0 {
			return
		}
		value := text(cell)
		switch {
		case strings.Contains(label, "Số án lệ"):
			detail.SerialNumber = value
		case strings.Contains(label, "Tên án lệ"):
			detail.Title = value
		case strings.Contains(label, "Ngày thông qua"):
			detail.Adoption = normalize.ParseDMY(value)
		case strings.Contains(label, "Quyết định công bố"):
			detail.PublicationDecision = value
		case strings.Contains(label, "Ngày công bố"):
			detail.Publication = normalize.ParseDMY(value)
		case strings.Contains(label, "Ngày áp dụng"):
			detail.Application = normalize.ParseDMY(value)
		case strings.Contains(label, "Lĩnh vực"):
			detail.Sector = value
		case strings.Contains(label, "Trạng thái"):
			detail.State = value
		}
	})

	doc.Find("div#filetaive").Each(func(_ int, block *goquery.Selection) {
		if href, ok := block.Find("a[href]").First().Attr("href"); ok && strings.TrimSpace(href) != "" {
			detail.AttachmentPaths = append(detail.AttachmentPaths, strings.TrimSpace(href))
		}
	})
	return detail, nil
}

// docName returns the dDocName of a detail link, or the value after its
// last "=" when the link does not parse.
func docName(href string) string {
	if u, ok := urlutil.Resolve(url.URL{}, href); ok {
		if id := urlutil.QueryValue(u, "dDocName"); id != "" {
			return id
		}
	}
	i := strings.LastIndex(href, "=")
	if i < 0 || i == len(href)-1 {
		return ""
	}
	return href[i+1:]
}
