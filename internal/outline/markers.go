package outline

import (
	"regexp"
	"strconv"
	"strings"
)

type Level int

const (
	LevelNone Level = iota
	LevelBigPart
	LevelChapter
	LevelPartSection
	LevelMiniPart
)

var (
	bigPartPattern = regexp.MustCompile(`^(?:Phần thứ|Phần) (nhất|hai|ba|bốn|năm|sáu|bảy|tám|chín|mười)$`)
	chapterPattern = regexp.MustCompile(`^Chương ([IVX]+.*)$`)
	// second spelling carries a combining dot below between "u" and "c"
	partSectionPattern = regexp.MustCompile(`^(?:Mục|Mu.c) ([IVX]+.*)$`)
	miniPartPattern    = regexp.MustCompile(`^Tiểu mục ([IVX]+.*)$`)
	articlePattern     = regexp.MustCompile(`^(?:Điều thứ|Điều) \d+`)
	terminatorPattern  = regexp.MustCompile(`_{2,}`)

	firstNumber   = regexp.MustCompile(`\d+`)
	firstWordRune = regexp.MustCompile(`[\p{L}\p{N}_]`)
)

// headingOf classifies a block as one of the four outline levels and
// returns the heading number. LevelNone for anything else.
func headingOf(block string) (Level, string) {
	if m := bigPartPattern.FindStringSubmatch(block); m != nil {
		return LevelBigPart, m[1]
	}
	if m := chapterPattern.FindStringSubmatch(block); m != nil {
		return LevelChapter, strings.TrimSpace(m[1])
	}
	if m := miniPartPattern.FindStringSubmatch(block); m != nil {
		return LevelMiniPart, strings.TrimSpace(m[1])
	}
	if m := partSectionPattern.FindStringSubmatch(block); m != nil {
		return LevelPartSection, strings.TrimSpace(m[1])
	}
	return LevelNone, ""
}

func isArticle(block string) bool {
	return articlePattern.MatchString(block)
}

func isTerminator(block string) bool {
	return terminatorPattern.MatchString(block)
}

// articleHead splits an article marker into its number and the raw name
// candidate: everything after the first digit run, starting at the first
// word character. ok is false when no name remains.
func articleHead(block string) (number int, name string, ok bool) {
	loc := firstNumber.FindStringIndex(block)
	if loc == nil {
		return 0, "", false
	}
	number, _ = strconv.Atoi(block[loc[0]:loc[1]])

	rest := block[loc[1]:]
	start := firstWordRune.FindStringIndex(rest)
	if start == nil {
		return number, "", false
	}
	return number, rest[start[0]:], true
}
