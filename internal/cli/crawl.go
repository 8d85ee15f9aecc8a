package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/spf13/cobra"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl <phapquy|hopnhat|anle>",
	Short: "Crawl every listed document of a collection",
	Long: `Walks all listing pages of the collection and crawls each document that
is not stored yet. For legal instruments the related-document and
cross-reference edges of the newly stored documents are crawled afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		collection, err := document.ParseCollection(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			stats, err := a.crawler().CrawlAll(ctx, collection)
			printStats(cmd, stats)
			return err
		})
	},
}

var crawlIDCmd = &cobra.Command{
	Use:   "crawl-id <phapquy|hopnhat|anle> <id>",
	Short: "Crawl one document by its portal ID, replacing any stored copy",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		collection, err := document.ParseCollection(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			doc, err := a.crawler().CrawlByID(ctx, collection, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s: %s\n", doc.Key(), doc.Title)
			return nil
		})
	},
}

var crawlGraphCmd = &cobra.Command{
	Use:   "crawl-graph <phapquy|hopnhat> <id>...",
	Short: "Crawl the related-document and cross-reference edges of documents",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		collection, err := document.ParseCollection(args[0])
		if err != nil {
			return err
		}
		if collection.Kind() != document.KindLegalInstrument {
			return fmt.Errorf("collection %s has no relation graph", collection)
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			stats, err := a.crawler().CrawlGraph(ctx, collection, args[1:])
			printStats(cmd, stats)
			return err
		})
	},
}

// withApp loads the configuration, wires the collaborators and runs fn
// with a context cancelled on SIGINT or SIGTERM.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, err := InitConfigWithError(cmd.Flags())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

func printStats(cmd *cobra.Command, stats metadata.CrawlStats) {
	if stats.RunID == "" {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(),
		"run %s: pages=%d seen=%d dispatched=%d skipped=%d failed=%d attachments=%d edges=%d aborted=%t duration=%s\n",
		stats.RunID,
		stats.PagesListed,
		stats.ItemsSeen,
		stats.Dispatched,
		stats.Skipped,
		stats.Failed,
		stats.Attachments,
		stats.Edges,
		stats.Aborted,
		stats.Duration,
	)
}
