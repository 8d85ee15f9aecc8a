package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/internal/preview"
	"github.com/spf13/cobra"
)

var (
	previewRows       int
	previewIssuedFrom string
)

var previewCmd = &cobra.Command{
	Use:   "preview <vbpl|anle>",
	Short: "Export stored documents as Markdown previews",
	Long: `Writes {output-dir}/preview/{source}/{id}.md for the newest stored
documents of a source: a YAML metadata header followed by the body, or the
article outline when the document has no body.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		criteria, err := previewCriteria(args[0], previewRows, previewIssuedFrom)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			result, err := a.exporter().Export(ctx, criteria)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d previews, %d failed\n", len(result.Paths), result.Failed)
			return nil
		})
	},
}

func init() {
	previewCmd.Flags().IntVar(&previewRows, "rows", 10, "number of documents to export (0 for all)")
	previewCmd.Flags().StringVar(&previewIssuedFrom, "issued-from", "", "only documents issued on or after this day (YYYY-MM-DD)")
}

func previewCriteria(source string, rows int, issuedFrom string) (preview.Criteria, error) {
	s, err := document.ParseSource(source)
	if err != nil {
		return preview.Criteria{}, err
	}
	if rows < 0 {
		return preview.Criteria{}, fmt.Errorf("--rows cannot be negative")
	}

	criteria := preview.Criteria{Source: s, Rows: rows}
	if issuedFrom != "" {
		t, err := time.Parse(time.DateOnly, issuedFrom)
		if err != nil {
			return preview.Criteria{}, fmt.Errorf("invalid --issued-from %q: %w", issuedFrom, err)
		}
		criteria.IssuedFrom = &t
	}
	return criteria, nil
}
