// Package outline segments the text blocks of a legal instrument's body
// into articles stamped with their Part / Chapter / Section / Mini-part path.
package outline

import (
	"strings"
	"unicode/utf8"
)

// MaxNameLength is the rune length from which an article name candidate
// is treated as body text. Real names are short; longer ones come from
// markup where name and body share one block.
const MaxNameLength = 400

// Parse reads blocks in document order. It is pure: the same blocks always
// yield the same Result. A body without any article yields no articles.
//
// An article runs from its marker to the next article marker or to the
// first block holding a run of two or more underscores, whichever comes
// first. Outline headers met inside an article body update the running
// position, are left out of the body, and take effect from the next
// article on.
func Parse(blocks []string) Result {
	preamble := prescan(blocks)
	result := Result{Preamble: preamble}

	pos := preamble
	i := 0
	for i < len(blocks) {
		if !isArticle(blocks[i]) {
			i++
			continue
		}

		article := Article{Position: pos}
		var body []string

		number, name, hasName := articleHead(blocks[i])
		article.Number = number
		if hasName {
			if utf8.RuneCountInString(name) >= MaxNameLength {
				body = append(body, name)
			} else {
				article.Name = &name
			}
		}

		j := i + 1
		for j < len(blocks) {
			block := blocks[j]
			if level, num := headingOf(block); level != LevelNone {
				headingName := nameAt(blocks, j+1)
				pos = pos.enter(level, Heading{Number: num, Name: headingName})
				j++
				if headingName != nil {
					j++
				}
				continue
			}
			if isArticle(block) || isTerminator(block) {
				break
			}
			body = append(body, block)
			j++
		}

		article.Body = strings.Join(body, "\n")
		result.Articles = append(result.Articles, article)
		i = j
	}

	return result
}

// prescan applies outline headers up to the first article marker.
func prescan(blocks []string) Position {
	var pos Position
	for i, block := range blocks {
		if isArticle(block) {
			break
		}
		if level, num := headingOf(block); level != LevelNone {
			pos = pos.enter(level, Heading{Number: num, Name: nameAt(blocks, i+1)})
		}
	}
	return pos
}

// nameAt returns the heading name held by block i. It is nil past the
// end and when block i is itself a marker or a terminator, which then
// stays in the flow.
func nameAt(blocks []string, i int) *string {
	if i >= len(blocks) {
		return nil
	}
	name := strings.TrimSpace(blocks[i])
	if name == "" || isArticle(name) || isTerminator(name) {
		return nil
	}
	if level, _ := headingOf(name); level != LevelNone {
		return nil
	}
	return &name
}
