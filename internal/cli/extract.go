package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/parlasf/internal/cache"
	"github.com/ppiankov/parlasf/internal/llm"
	"github.com/ppiankov/parlasf/internal/model"
	"github.com/ppiankov/parlasf/internal/output"
	"github.com/ppiankov/parlasf/internal/pipeline"
	"github.com/ppiankov/parlasf/internal/resources"
	"github.com/ppiankov/parlasf/internal/speech"
	"github.com/ppiankov/parlasf/internal/sqlsink"
	"github.com/ppiankov/parlasf/internal/worker"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	listFile       string
	noCache        bool
	extractTimeout time.Duration
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <corpus-path>",
	Short: "Extract task rows from a corpus file or directory",
	Long: `Extract runs a task over every TEI file of the corpus:
- Resolve each speaker's party, role and coalition status on the file date
- Look up the speech type of each speech source
- Run the task matcher over every sentence
- Write one row per match, plus a run.json manifest

The corpus path may be a single file or a directory searched recursively
for *.xml files. The metadata file is looked up next to the corpus unless
--metadata is given.

Example:
  parlasf extract ./IGC-Parla --task sf_main_clause
  parlasf extract ./IGC-Parla/2008 --task hardspeech --voiced -o ./out
  parlasf extract ./IGC-Parla --years 2008,2009 --person BjarniBenediktsson --speech-dir ./speeches
  parlasf extract ./IGC-Parla --workers 8 --fail-fast --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	f := extractCmd.Flags()
	f.String("task", model.TaskMainClause, "task to run (sf_main_clause, sf_sub_clause, hardspeech)")

	// Data flags
	f.String("metadata", "", "corpus metadata file (default: <corpus>/"+model.MetadataFileName+")")
	f.String("speech-types", "", "speech type table (url<TAB>type)")
	f.String("phonetic-dict", "", "phonetic dictionary (hardspeech only)")
	f.String("freq-dict", "", "frequency dictionary (.json, or .tsv converted on load)")

	// Filter flags
	f.String("person", "", "only process speeches by this speaker id")
	f.IntSlice("years", nil, "only process files dated in these years")

	// Output flags
	f.StringP("output", "o", "", "output directory")
	f.String("file-name", "", "output file name (default: <task>.tsv or <task>.json)")
	f.String("format", "", "output format (tsv, json)")
	f.String("text-scope", "", "text column content (speech, sentence)")
	f.String("speech-dir", "", "also save each speech text to this directory")
	f.Bool("aggregates", true, "compute MATTR and rank aggregates per speech")
	f.Bool("no-manifest", false, "do not write run.json")

	// Task flags
	f.Bool("voiced", false, "hardspeech: use the sonorant devoicing pattern")

	// Concurrency flags
	f.Int("workers", 1, "number of files processed in parallel")
	f.Bool("fail-fast", false, "stop at the first file that fails")

	// Integrations
	f.String("llm", "", "LLM provider classifying speeches without a known type (openai)")
	f.String("mysql-dsn", "", "also export rows to this MySQL database")

	f.StringVar(&listFile, "list", "", "read corpus file paths from this file instead of walking the corpus path")
	f.BoolVar(&noCache, "no-cache", false, "disable the dictionary cache")
	f.DurationVar(&extractTimeout, "timeout", 0, "overall timeout (0 = none)")

	for key, flag := range map[string]string{
		"task":                  "task",
		"data.metadata":         "metadata",
		"data.speech_types":     "speech-types",
		"data.phonetic_dict":    "phonetic-dict",
		"data.freq_dict":        "freq-dict",
		"filter.person":         "person",
		"filter.years":          "years",
		"output.dir":            "output",
		"output.file_name":      "file-name",
		"output.format":         "format",
		"output.text_scope":     "text-scope",
		"output.speech_dir":     "speech-dir",
		"output.no_manifest":    "no-manifest",
		"analysis.aggregates":   "aggregates",
		"hardspeech.voiced":     "voiced",
		"concurrency.workers":   "workers",
		"concurrency.fail_fast": "fail-fast",
		"llm.provider":          "llm",
		"export.mysql_dsn":      "mysql-dsn",
	} {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	corpusPath := args[0]
	started := time.Now()

	ctx := context.Background()
	if extractTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, extractTimeout)
		defer cancel()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noCache {
		cfg.Cache.Enabled = false
	}

	files, err := inputFiles(corpusPath)
	if err != nil {
		return err
	}

	metadataPath, err := resources.MetadataPath(cfg.Data, corpusPath)
	if err != nil {
		return err
	}

	outName := cfg.Output.FileName
	if outName == "" {
		outName = output.DefaultFileName(cfg.Task, cfg.Output.Format)
	}
	outPath := filepath.Join(cfg.Output.Dir, outName)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  parlasf extraction\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Task:      %s\n", cfg.Task)
	fmt.Fprintf(os.Stderr, "  Corpus:    %s (%d files)\n", corpusPath, len(files))
	fmt.Fprintf(os.Stderr, "  Metadata:  %s\n", metadataPath)
	fmt.Fprintf(os.Stderr, "  Workers:   %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outPath)
	if years := cfg.Filter.AllYears(); len(years) > 0 {
		fmt.Fprintf(os.Stderr, "  Years:     %v\n", years)
	}
	if cfg.Filter.Person != "" {
		fmt.Fprintf(os.Stderr, "  Person:    %s\n", cfg.Filter.Person)
	}
	fmt.Fprintf(os.Stderr, "\n")

	fmt.Fprintf(os.Stderr, "⚙️  Loading dictionaries...\n")
	res, err := resources.Load(cfg.Data, metadataPath, cfg.Task, cache.New(cfg.Cache))
	if err != nil {
		return err
	}

	classifier, err := speechTypeClassifier(ctx, cfg, res)
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg, res, classifier)
	if err != nil {
		return err
	}

	writer, err := output.Create(outPath, cfg.Output.Format, p.Columns())
	if err != nil {
		return err
	}

	var exporter *sqlsink.Exporter
	if cfg.Export.MySQLDSN != "" {
		exporter, err = sqlsink.Open(ctx, cfg.Export.MySQLDSN, cfg.Export.Table, p.Columns(), cfg.Export.BatchSize)
		if err != nil {
			_ = writer.Close()
			return err
		}
		if err := exporter.EnsureTable(ctx); err != nil {
			_ = writer.Close()
			_ = exporter.Close(ctx)
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "⚙️  Processing %d files with %d workers...\n\n", len(files), cfg.Concurrency.Workers)
	batch := worker.NewBatchProcessor(p, cfg.Concurrency.Workers, cfg.Concurrency.FailFast)
	results := batch.ProcessFiles(ctx, files)

	manifest := pipeline.NewRunManifest(cfg.Task, corpusPath, outPath)
	var writeErr error
	skipped := 0
	for _, result := range results {
		if result.Skipped {
			skipped++
			continue
		}
		manifest.Record(result.Path, result.Report, result.Error)
		if result.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}
		if result.Report.Filtered {
			continue
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "✓ %s (%d speeches, %d rows)\n", result.Path, result.Report.Speeches, len(result.Report.Rows))
		}
		if writeErr == nil {
			writeErr = writeRows(ctx, writer, exporter, result.Report.Rows)
		}
	}
	manifest.Finish()

	if err := writer.Close(); err != nil && writeErr == nil {
		writeErr = err
	}
	if exporter != nil {
		if err := exporter.Close(ctx); err != nil && writeErr == nil {
			writeErr = err
		}
	}
	if writeErr != nil {
		return fmt.Errorf("write output: %w", writeErr)
	}

	if !cfg.Output.NoManifest {
		manifestPath := filepath.Join(cfg.Output.Dir, "run.json")
		if err := manifest.Write(manifestPath); err != nil {
			return err
		}
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Extraction Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Files:     %d (%d filtered out)\n", manifest.Files, manifest.Filtered)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", len(manifest.FailedFiles))
	if skipped > 0 {
		fmt.Fprintf(os.Stderr, "  Skipped:   %d (fail-fast)\n", skipped)
	}
	fmt.Fprintf(os.Stderr, "  Speeches:  %d (%d unknown speakers)\n", manifest.Speeches, manifest.Unknown)
	fmt.Fprintf(os.Stderr, "  Rows:      %d\n", writer.Count())
	if exporter != nil {
		fmt.Fprintf(os.Stderr, "  Exported:  %d rows to %s\n", exporter.Written(), cfg.Export.Table)
	}
	fmt.Fprintf(os.Stderr, "  Run ID:    %s\n", manifest.ID)
	fmt.Fprintf(os.Stderr, "  Elapsed:   %v\n", time.Since(started).Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "\n")

	if cfg.Concurrency.FailFast && len(manifest.FailedFiles) > 0 {
		return fmt.Errorf("%s: %s", manifest.FailedFiles[0].Path, manifest.FailedFiles[0].Error)
	}
	return nil
}

// inputFiles returns the corpus files named by --list or found under path
func inputFiles(path string) ([]string, error) {
	if listFile != "" {
		files, err := worker.ReadPathList(listFile)
		if err != nil {
			return nil, fmt.Errorf("read file list: %w", err)
		}
		return files, nil
	}
	files, err := pipeline.CollectFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("no corpus files found")
	}
	return files, nil
}

// speechTypeClassifier returns the LLM fallback for speeches of unknown
// type, or nil when no provider is configured
func speechTypeClassifier(ctx context.Context, cfg *model.Config, res *resources.Resources) (speech.TypeClassifier, error) {
	classifier, err := llm.NewClassifier(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, err
	}
	if classifier == nil {
		return nil, nil
	}
	if !classifier.IsAvailable(ctx) {
		return nil, fmt.Errorf("LLM provider %s is not available (missing OPENAI_API_KEY?)", classifier.Name())
	}
	log.Info().Str("provider", classifier.Name()).Str("model", cfg.LLM.Model).Msg("classifying unknown speech types")
	return &llm.SpeechTypeFallback{Classifier: classifier, Types: res.SpeechTypes.Types()}, nil
}

func writeRows(ctx context.Context, writer output.RowWriter, exporter *sqlsink.Exporter, rows []speech.Row) error {
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return err
		}
		if exporter != nil {
			if err := exporter.Add(ctx, row.Values()); err != nil {
				return err
			}
		}
	}
	return nil
}
