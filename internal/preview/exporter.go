/*
Package preview exports stored documents as Markdown files for review.

Output layout: {outputDir}/preview/{source}/{id}.md. Each file opens with a
YAML front matter block of the document metadata, followed by the title and
the body converted to Markdown. A document stored without a body is
rendered from its outline articles instead.

Reruns overwrite previous previews of the same document.
*/
package preview

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/internal/mdconvert"
	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/internal/outline"
	"github.com/rohmanhakim/vnlaw-crawler/internal/storage"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/fileutil"
	"gopkg.in/yaml.v3"
)

// Criteria selects the documents to export.
type Criteria struct {
	Source document.Source
	// Rows caps the number of documents; zero exports all.
	Rows       int
	IssuedFrom *time.Time
}

type ExportResult struct {
	Paths  []string
	Failed int
}

type Exporter struct {
	metadataSink metadata.MetadataSink
	store        storage.Store
	rule         mdconvert.ConvertRule
	outputDir    string
}

func NewExporter(
	metadataSink metadata.MetadataSink,
	store storage.Store,
	rule mdconvert.ConvertRule,
	outputDir string,
) *Exporter {
	return &Exporter{
		metadataSink: metadataSink,
		store:        store,
		rule:         rule,
		outputDir:    outputDir,
	}
}

// Export writes one preview per selected document, newest issuance first.
// A document that fails to render or write is counted and skipped; only a
// failing store query ends the export.
func (e *Exporter) Export(ctx context.Context, criteria Criteria) (ExportResult, failure.ClassifiedError) {
	docs, err := e.store.List(ctx, storage.ListFilter{
		Source:     criteria.Source,
		IssuedFrom: criteria.IssuedFrom,
		Limit:      criteria.Rows,
	})
	if err != nil {
		return ExportResult{}, err
	}

	var result ExportResult
	for _, doc := range docs {
		if ctx.Err() != nil {
			break
		}
		path, err := e.exportOne(doc)
		if err != nil {
			result.Failed++
			continue
		}
		result.Paths = append(result.Paths, path)
	}
	return result, nil
}

func (e *Exporter) exportOne(doc *document.Document) (string, failure.ClassifiedError) {
	path := filepath.Join(e.outputDir, "preview", string(doc.Source), doc.ID+".md")

	content, err := e.render(doc)
	if err == nil {
		if writeErr := fileutil.WriteFileAtomic(path, content); writeErr != nil {
			err = &PreviewError{
				Message:   writeErr.Error(),
				Retryable: writeErr.Severity() == failure.SeverityRecoverable,
				Cause:     ErrCauseWrite,
				Path:      path,
			}
		}
	}
	if err != nil {
		e.metadataSink.RecordError(
			time.Now(),
			"preview",
			"Exporter.Export",
			mapPreviewErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrSource, string(doc.Source)),
				metadata.NewAttr(metadata.AttrDocumentID, doc.ID),
				metadata.NewAttr(metadata.AttrWritePath, path),
			},
		)
		return "", err
	}

	e.metadataSink.RecordArtifact(
		metadata.ArtifactPreview,
		path,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrSource, string(doc.Source)),
			metadata.NewAttr(metadata.AttrDocumentID, doc.ID),
		},
	)
	return path, nil
}

func (e *Exporter) render(doc *document.Document) ([]byte, *PreviewError) {
	head, err := yaml.Marshal(newFrontMatter(doc))
	if err != nil {
		return nil, &PreviewError{Message: err.Error(), Cause: ErrCauseRender}
	}

	converted, convErr := e.rule.Convert(doc.ID, doc.BodyHTML)
	if convErr != nil {
		return nil, &PreviewError{Message: convErr.Error(), Cause: ErrCauseRender}
	}

	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(head)
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	if !converted.IsEmpty() {
		b.Write(converted.GetMarkdownContent())
		b.WriteString("\n")
	} else {
		writeOutline(&b, doc.Outline)
	}
	return b.Bytes(), nil
}

func writeOutline(b *bytes.Buffer, articles []outline.Article) {
	for _, a := range articles {
		fmt.Fprintf(b, "## Điều %d.", a.Number)
		if a.Name != nil {
			fmt.Fprintf(b, " %s", *a.Name)
		}
		b.WriteString("\n\n")
		if a.Body != "" {
			b.WriteString(a.Body)
			b.WriteString("\n\n")
		}
	}
}
