package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/parlasf/internal/freq"
	"github.com/ppiankov/parlasf/internal/match"
	"github.com/ppiankov/parlasf/internal/model"
	"github.com/ppiankov/parlasf/internal/output"
	"github.com/ppiankov/parlasf/internal/phon"
	"github.com/spf13/cobra"
)

var (
	checkTask     string
	checkFreqDict string
	checkPhonetic string
	checkVoiced   bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Run a task matcher over hand-written sentences",
	Long: `Check runs a matcher over sentences given one per line, each token
written as word/lemma/tag and tokens separated by spaces. Input is read
from the file or from stdin. Matches are printed as TSV.

Example:
  echo "það/það/fphen hefur/hafa/sfg3eþ verið/vera/sþgken sagt/segja/sþghen" | parlasf check
  parlasf check --task hardspeech --phonetic-dict ./pron.tsv sentences.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkTask, "task", model.TaskMainClause, "task to run (sf_main_clause, sf_sub_clause, hardspeech)")
	checkCmd.Flags().StringVar(&checkFreqDict, "freq-dict", "", "frequency dictionary for the freq column")
	checkCmd.Flags().StringVar(&checkPhonetic, "phonetic-dict", "", "phonetic dictionary (required for hardspeech)")
	checkCmd.Flags().BoolVar(&checkVoiced, "voiced", false, "hardspeech: use the sonorant devoicing pattern")
}

func runCheck(cmd *cobra.Command, args []string) error {
	opts := match.Options{
		Freqs:      freq.Table(nil),
		Hardspeech: model.HardspeechConfig{Voiced: checkVoiced},
	}
	if checkFreqDict != "" {
		table, err := freq.Load(checkFreqDict, nil, "")
		if err != nil {
			return err
		}
		opts.Freqs = table
	}
	if checkTask == model.TaskHardspeech {
		if checkPhonetic == "" {
			return fmt.Errorf("--phonetic-dict is required for %s", model.TaskHardspeech)
		}
		dict, err := phon.Load(checkPhonetic)
		if err != nil {
			return err
		}
		opts.Phones = dict
	}

	matcher, err := match.New(checkTask, opts)
	if err != nil {
		return err
	}

	in := io.Reader(os.Stdin)
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	return checkSentences(in, cmd.OutOrStdout(), matcher)
}

// checkSentences matches each input line and writes the rows as TSV
func checkSentences(in io.Reader, out io.Writer, matcher match.Matcher) error {
	writer, err := output.NewTSVWriter(out, matcher.Columns())
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, row := range matcher.Match(ParseSentence(line)) {
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return writer.Close()
}

// ParseSentence reads space-separated word/lemma/tag tokens. A token
// without a lemma uses the word; a missing tag stays empty. Tags starting
// with "p" mark punctuation.
func ParseSentence(line string) model.Sentence {
	var sentence model.Sentence
	for _, field := range strings.Fields(line) {
		parts := strings.SplitN(field, "/", 3)
		tok := model.Token{Word: parts[0], Lemma: parts[0]}
		if len(parts) > 1 && parts[1] != "" {
			tok.Lemma = parts[1]
		}
		if len(parts) > 2 {
			tok.Tag = parts[2]
			tok.Punct = strings.HasPrefix(tok.Tag, "p")
		}
		if tok.Punct {
			tok.Lemma = ""
		}
		sentence = append(sentence, tok)
	}
	return sentence
}
