package mdconvert

type ConversionResult struct {
	markdownContent []byte
}

func NewConversionResult(markdownContent []byte) ConversionResult {
	return ConversionResult{
		markdownContent: markdownContent,
	}
}

func (c *ConversionResult) GetMarkdownContent() []byte {
	return c.markdownContent
}

// IsEmpty reports whether the body produced no Markdown at all.
func (c *ConversionResult) IsEmpty() bool {
	return len(c.markdownContent) == 0
}
