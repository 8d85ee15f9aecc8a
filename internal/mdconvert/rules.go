package mdconvert

import (
	"bytes"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
	"golang.org/x/net/html"
)

/*
Conversion Rules
- Headings map directly (h1-h6 to # - ######)
- Tables converted structurally (GFM); legal bodies use them for signatures
  and appendices
- Links preserved as-is (no resolution)
- DOM order preserved

The input is a sanitized body fragment as stored with a document.
*/

// ConvertRule converts a stored body HTML fragment to Markdown.
type ConvertRule interface {
	Convert(documentID string, bodyHTML string) (ConversionResult, failure.ClassifiedError)
}

var _ ConvertRule = (*StrictConversionRule)(nil)

type StrictConversionRule struct {
	metadataSink metadata.MetadataSink
	conv         *converter.Converter
}

func NewRule(metadataSink metadata.MetadataSink) *StrictConversionRule {
	return &StrictConversionRule{
		metadataSink: metadataSink,
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Convert returns an empty result for a blank body.
func (s *StrictConversionRule) Convert(
	documentID string,
	bodyHTML string,
) (ConversionResult, failure.ClassifiedError) {
	if strings.TrimSpace(bodyHTML) == "" {
		return NewConversionResult(nil), nil
	}

	result, err := s.convert(bodyHTML)
	if err != nil {
		s.metadataSink.RecordError(
			time.Now(),
			"mdconvert",
			"StrictConversionRule.Convert",
			mapConversionErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrDocumentID, documentID),
			},
		)
		return ConversionResult{}, err
	}
	return result, nil
}

func (s *StrictConversionRule) convert(bodyHTML string) (ConversionResult, *ConversionError) {
	root, err := html.Parse(strings.NewReader(bodyHTML))
	if err != nil {
		return ConversionResult{}, &ConversionError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseNotHTML,
		}
	}

	markdown, err := s.conv.ConvertNode(root)
	if err != nil {
		return ConversionResult{}, &ConversionError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseConversionFailure,
		}
	}

	return NewConversionResult(bytes.TrimSpace(markdown)), nil
}
