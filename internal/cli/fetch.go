package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/internal/storage"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <vbpl|anle> <id>",
	Short: "Print a stored document",
	Long: `Reads one document from the store, without any network access. A
document stored as not yet effective whose effective date has passed is
promoted to in effect and saved back before printing.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := document.ParseSource(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			doc, edges, promoted, err := FetchOne(ctx, a.store, document.Key{Source: source, ID: args[1]}, time.Now())
			if err != nil {
				return err
			}
			if promoted {
				a.log.Info("document promoted", "document_id", doc.ID, "state", doc.State)
			}
			RenderDocument(cmd.OutOrStdout(), doc, edges)
			return nil
		})
	},
}

// FetchOne loads the document stored under key with its edges, promoting
// and persisting its status when the effective date has passed by now.
func FetchOne(ctx context.Context, store storage.Store, key document.Key, now time.Time) (*document.Document, []document.Edge, bool, error) {
	doc, err := store.Get(ctx, key)
	if err != nil {
		return nil, nil, false, err
	}

	promoted := doc.PromoteIfEffective(now)
	if promoted {
		if err := store.Save(ctx, doc); err != nil {
			return nil, nil, false, err
		}
	}

	edges, err := store.Edges(ctx, key)
	if err != nil {
		return nil, nil, false, err
	}
	return doc, edges, promoted, nil
}

// RenderDocument prints the metadata, attachments, outline summary and
// edges of doc as tables.
func RenderDocument(w io.Writer, doc *document.Document, edges []document.Edge) {
	fields := table.NewWriter()
	fields.SetOutputMirror(w)
	fields.SetStyle(table.StyleLight)
	fields.SetTitle(doc.Key().String())
	fields.AppendHeader(table.Row{"Field", "Value"})
	for _, row := range []table.Row{
		{"Title", doc.Title},
		{"Subtitle", doc.Subtitle},
		{"Serial number", doc.SerialNumber},
		{"Type", doc.DocType},
		{"Issuing authority", doc.IssuingAuthority},
		{"Applicable information", doc.ApplicableInformation},
		{"Publication decision", doc.PublicationDecision},
		{"State", doc.State},
		{"Sector", doc.Sector},
		{"Issued", day(doc.Dates.Issuance)},
		{"Effective", day(doc.Dates.Effective)},
		{"Expiration", day(doc.Dates.Expiration)},
		{"Gazette", day(doc.Dates.Gazette)},
		{"Adoption", day(doc.Dates.Adoption)},
		{"Publication", day(doc.Dates.Publication)},
		{"Application", day(doc.Dates.Application)},
	} {
		if row[1] != "" {
			fields.AppendRow(row)
		}
	}
	fields.Render()

	if len(doc.Attachments) > 0 {
		attachments := table.NewWriter()
		attachments.SetOutputMirror(w)
		attachments.SetStyle(table.StyleLight)
		attachments.AppendHeader(table.Row{"Attachment", "Kind", "Status", "Remote URL"})
		for _, a := range doc.Attachments {
			attachments.AppendRow(table.Row{a.LocalName, a.Kind, a.Status, a.RemoteURL})
		}
		attachments.Render()
	}

	if len(doc.Outline) > 0 {
		articles := table.NewWriter()
		articles.SetOutputMirror(w)
		articles.SetStyle(table.StyleLight)
		articles.AppendHeader(table.Row{"Article", "Name", "Body"})
		for _, a := range doc.Outline {
			name := ""
			if a.Name != nil {
				name = *a.Name
			}
			articles.AppendRow(table.Row{fmt.Sprintf("Điều %d", a.Number), name, fmt.Sprintf("%d chars", len([]rune(a.Body)))})
		}
		articles.AppendFooter(table.Row{"", "Total", len(doc.Outline)})
		articles.Render()
	}

	if len(edges) > 0 {
		relations := table.NewWriter()
		relations.SetOutputMirror(w)
		relations.SetStyle(table.StyleLight)
		relations.AppendHeader(table.Row{"Space", "Label", "Target"})
		for _, e := range edges {
			relations.AppendRow(table.Row{e.Space, e.Label, e.TargetID})
		}
		relations.Render()
	}
}

func day(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02/01/2006")
}
