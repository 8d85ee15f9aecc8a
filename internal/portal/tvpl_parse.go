package portal

import "github.com/PuerkitoBio/goquery"

// ParseTvplSearch returns the result titles of a tvpl search page, in
// page order.
func ParseTvplSearch(body []byte) ([]SearchHit, *ParseError) {
	doc, err := parseHTML(body)
	if err != nil {
		return nil, err
	}
	var hits []SearchHit
	doc.Find("p.nqTitle").Each(func(_ int, title *goquery.Selection) {
		href, ok := title.Find("a[href]").First().Attr("href")
		if !ok {
			return
		}
		hits = append(hits, SearchHit{Title: text(title), Href: href})
	})
	return hits, nil
}
