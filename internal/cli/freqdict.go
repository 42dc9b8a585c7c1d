package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/parlasf/internal/freq"
	"github.com/spf13/cobra"
)

// freqdictCmd groups the frequency dictionary commands
var freqdictCmd = &cobra.Command{
	Use:   "freqdict",
	Short: "Manage the lemma frequency dictionary",
}

var freqdictBuildCmd = &cobra.Command{
	Use:   "build <in.tsv> <out.json>",
	Short: "Convert a lemma<TAB>tag<TAB>freq list into the JSON dictionary",
	Long: `Build reads a frequency list sorted by descending frequency and writes
{lemma: {tag: [freq, rank]}} where rank is the 1-based row number. Only the
first character of the tag is kept (two for nouns).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := freq.BuildFile(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %d lemmas to %s\n", table.Len(), args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(freqdictCmd)
	freqdictCmd.AddCommand(freqdictBuildCmd)
}
