package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/parlasf/internal/cache"
	"github.com/ppiankov/parlasf/internal/scrape"
	"github.com/ppiankov/parlasf/internal/speechtype"
	"github.com/spf13/cobra"
)

var (
	scrapeOut     string
	scrapeTimeout time.Duration
)

// speechtypesCmd groups the speech type table commands
var speechtypesCmd = &cobra.Command{
	Use:   "speechtypes",
	Short: "Build and query the speech type table",
}

var speechtypesScrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape speech types from the parliament website",
	Long: `Scrape walks the list of parliaments, the member pages of each
parliament and the speech list of each member, and writes url<TAB>type
rows. Pages are cached, rate limited and checked against robots.txt.

Example:
  parlasf speechtypes scrape --out ./extraction_data/speech_types.tsv`,
	Args: cobra.NoArgs,
	RunE: runScrape,
}

var speechtypesLookupCmd = &cobra.Command{
	Use:   "lookup <source-url>...",
	Short: "Print the speech type resolved for speech source URLs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		table, err := speechtype.Load(cfg.Data.SpeechTypes)
		if err != nil {
			return err
		}
		for _, source := range args {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", source, table.Resolve(source))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(speechtypesCmd)
	speechtypesCmd.AddCommand(speechtypesScrapeCmd)
	speechtypesCmd.AddCommand(speechtypesLookupCmd)

	speechtypesScrapeCmd.Flags().StringVar(&scrapeOut, "out", "speech_types.tsv", "output TSV path")
	speechtypesScrapeCmd.Flags().DurationVar(&scrapeTimeout, "timeout", 0, "overall timeout (0 = none)")
}

func runScrape(cmd *cobra.Command, args []string) (err error) {
	ctx := context.Background()
	if scrapeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, scrapeTimeout)
		defer cancel()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "⚙️  Scraping %s...\n", cfg.Scrape.MainURL)
	scraper := scrape.NewScraper(cfg.Scrape, cache.New(cfg.Cache))
	urls, table, stats, err := scraper.Run(ctx)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(scrapeOut), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(scrapeOut)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close output file: %w", closeErr)
		}
	}()
	if err := speechtype.Write(f, urls, table); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "✓ %d parliaments, %d member pages (%d failed)\n", stats.Parliaments, stats.Members, stats.Failed)
	fmt.Fprintf(os.Stderr, "✓ Wrote %d speech types to %s\n", stats.Speeches, scrapeOut)
	return nil
}
