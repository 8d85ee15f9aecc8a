package extractor

// ExtractionResult is the body of one document page: the container markup
// kept as the document's body HTML, and its text blocks in source order.
type ExtractionResult struct {
	containerHTML string
	blocks        []string
}

func NewExtractionResult(containerHTML string, blocks []string) ExtractionResult {
	return ExtractionResult{
		containerHTML: containerHTML,
		blocks:        blocks,
	}
}

func (e ExtractionResult) ContainerHTML() string {
	return e.containerHTML
}

func (e ExtractionResult) Blocks() []string {
	return e.blocks
}
