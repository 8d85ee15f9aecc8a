/*
Package sanitizer cleans the body HTML kept with a document before it is
persisted or exported.

  - script, style, noscript and iframe elements are dropped with their content
  - comments are dropped
  - elements left empty are removed bottom-up, except void and table elements

Text and block order are never changed, so the cleaned body still yields
the same outline blocks.
*/
package sanitizer

import (
	"strings"
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type Sanitizer interface {
	Sanitize(fragment string) (string, failure.ClassifiedError)
}

var _ Sanitizer = (*HtmlSanitizer)(nil)

type HtmlSanitizer struct {
	metadataSink metadata.MetadataSink
}

func NewHTMLSanitizer(metadataSink metadata.MetadataSink) *HtmlSanitizer {
	return &HtmlSanitizer{
		metadataSink: metadataSink,
	}
}

// Sanitize cleans an HTML fragment and renders it back. An empty fragment
// stays empty.
func (h *HtmlSanitizer) Sanitize(fragment string) (string, failure.ClassifiedError) {
	if strings.TrimSpace(fragment) == "" {
		return "", nil
	}

	out, err := sanitize(fragment)
	if err != nil {
		h.metadataSink.RecordError(
			time.Now(),
			"sanitizer",
			"HtmlSanitizer.Sanitize",
			mapSanitizationErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrField, "body_html"),
			},
		)
		return "", err
	}
	return out, nil
}

func sanitize(fragment string) (string, *SanitizationError) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return "", &SanitizationError{Message: err.Error(), Cause: ErrCauseBrokenDOM}
	}

	// hang the parsed nodes under one root so removal can work on parents
	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		root.AppendChild(n)
	}

	removeUnwantedNodes(root)
	removeEmptyNodesBottomUp(root)

	var b strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", &SanitizationError{Message: err.Error(), Cause: ErrCauseBrokenDOM}
		}
	}
	return b.String(), nil
}
