package outline

// Heading is one level of the outline path: its number as printed
// ("I", "nhất", "2") and the name taken from the following block.
type Heading struct {
	Number string
	Name   *string
}

// Position is the outline path in effect at some point of the body.
// It is a value: every update returns a new Position, so a copy held by
// an Article never changes afterwards.
type Position struct {
	BigPart     *Heading
	Chapter     *Heading
	PartSection *Heading
	MiniPart    *Heading
}

// enter returns the position after crossing a marker of the given level.
// BigPart and Chapter close the current part section and mini part;
// a new part section closes the current mini part.
func (p Position) enter(level Level, h Heading) Position {
	next := p
	switch level {
	case LevelBigPart:
		next.BigPart = &h
		next.PartSection, next.MiniPart = nil, nil
	case LevelChapter:
		next.Chapter = &h
		next.PartSection, next.MiniPart = nil, nil
	case LevelPartSection:
		next.PartSection = &h
		next.MiniPart = nil
	case LevelMiniPart:
		next.MiniPart = &h
	}
	return next
}

// Article is one "Điều" with its body and the position it was opened in.
type Article struct {
	Number   int
	Name     *string
	Body     string
	Position Position
}

// Result of parsing one document body.
type Result struct {
	// Preamble is the position established by headers before the first
	// article. Zero when the body opens with an article or has none.
	Preamble Position
	Articles []Article
}
