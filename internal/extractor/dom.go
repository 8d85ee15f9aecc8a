/*
Package extractor turns a document page into the ordered text blocks the
outline parser reads.

The body container is located by CSS selector. Its paragraphs are the
blocks; containers without any paragraph (older consolidated texts) use
their div elements instead. Block text is NFC-normalized with whitespace
collapsed, and empty blocks are dropped.
*/
package extractor

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/internal/normalize"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
	"golang.org/x/net/html"
)

type DomExtractor struct {
	metadataSink metadata.MetadataSink
}

func NewDomExtractor(metadataSink metadata.MetadataSink) *DomExtractor {
	return &DomExtractor{
		metadataSink: metadataSink,
	}
}

// Extract finds the first container matching selectors in the page.
// A page without a container fails with ErrCauseNoContent, which callers
// use to switch to a fallback source.
func (d *DomExtractor) Extract(
	sourceUrl url.URL,
	htmlByte []byte,
	selectors []string,
) (ExtractionResult, failure.ClassifiedError) {
	result, err := extract(htmlByte, selectors)
	if err != nil {
		d.metadataSink.RecordError(
			time.Now(),
			"extractor",
			"DomExtractor.Extract",
			mapExtractionErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, sourceUrl.String()),
			},
		)
		return ExtractionResult{}, err
	}
	return result, nil
}

func extract(htmlByte []byte, selectors []string) (ExtractionResult, *ExtractionError) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlByte))
	if err != nil {
		return ExtractionResult{}, &ExtractionError{
			Message:   fmt.Sprintf("failed to parse HTML: %v", err),
			Retryable: false,
			Cause:     ErrCauseNotHTML,
		}
	}

	for _, selector := range selectors {
		if container := doc.Find(selector).First(); container.Length() > 0 {
			return FromContainer(container.Nodes[0]), nil
		}
	}

	return ExtractionResult{}, &ExtractionError{
		Message:   fmt.Sprintf("no body container matching %s", strings.Join(selectors, ", ")),
		Retryable: false,
		Cause:     ErrCauseNoContent,
	}
}

// FromContainer builds the result for an already located container.
func FromContainer(container *html.Node) ExtractionResult {
	var rendered bytes.Buffer
	_ = html.Render(&rendered, container)

	sel := goquery.NewDocumentFromNode(container).Selection
	lines := sel.Find("p")
	if lines.Length() == 0 {
		lines = sel.Find("div")
	}

	blocks := make([]string, 0, lines.Length())
	lines.Each(func(_ int, s *goquery.Selection) {
		if text := normalize.Text(nodeText(s.Nodes[0])); text != "" {
			blocks = append(blocks, text)
		}
	})

	return NewExtractionResult(rendered.String(), blocks)
}

// nodeText concatenates the text under n, turning line breaks into spaces.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "br" {
				b.WriteString(" ")
			}
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
