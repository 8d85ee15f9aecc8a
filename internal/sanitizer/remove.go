package sanitizer

import (
	"strings"

	"golang.org/x/net/html"
)

var droppedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
}

// removeUnwantedNodes drops comments and non-content elements anywhere
// under node.
func removeUnwantedNodes(node *html.Node) {
	var children []*html.Node
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		children = append(children, child)
	}

	for _, child := range children {
		if child.Type == html.CommentNode ||
			(child.Type == html.ElementNode && droppedElements[child.Data]) {
			node.RemoveChild(child)
			continue
		}
		removeUnwantedNodes(child)
	}
}

// removeEmptyNodesBottomUp removes empty elements in post-order, so nested
// empty containers disappear innermost first.
func removeEmptyNodesBottomUp(node *html.Node) {
	var children []*html.Node
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		children = append(children, child)
	}
	for _, child := range children {
		removeEmptyNodesBottomUp(child)
	}

	if node.Parent != nil && node.Type == html.ElementNode &&
		isEmptyNode(node) && shouldRemoveEmptyElement(node.Data) {
		node.Parent.RemoveChild(node)
	}
}

// void elements are valid when empty; table cells and rows keep the grid
// of signature and schedule tables intact
var keptWhenEmpty = map[string]bool{
	"area": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "object": true, "param": true, "source": true, "wbr": true,
	"table": true, "thead": true, "tbody": true, "tr": true, "td": true, "th": true,
}

func shouldRemoveEmptyElement(tag string) bool {
	return !keptWhenEmpty[tag]
}

func isEmptyNode(node *html.Node) bool {
	if node == nil || node.Type != html.ElementNode {
		return false
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.ElementNode:
			return false
		case html.TextNode:
			if strings.TrimSpace(strings.ReplaceAll(child.Data, "\u00a0", " ")) != "" {
				return false
			}
		}
	}
	return true
}
