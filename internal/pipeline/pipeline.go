package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/parlasf/internal/affiliation"
	"github.com/ppiankov/parlasf/internal/match"
	"github.com/ppiankov/parlasf/internal/model"
	"github.com/ppiankov/parlasf/internal/resources"
	"github.com/ppiankov/parlasf/internal/speech"
	"github.com/ppiankov/parlasf/internal/tei"
	"github.com/rs/zerolog/log"
)

// Pipeline extracts rows from corpus files
type Pipeline struct {
	res       *resources.Resources
	assembler *speech.Assembler
	filter    *Filter
	speechDir string // Empty disables saving speech texts
}

// NewPipeline creates a pipeline for the configured task
func NewPipeline(cfg *model.Config, res *resources.Resources, classifier speech.TypeClassifier) (*Pipeline, error) {
	matcher, err := match.New(cfg.Task, match.Options{
		Freqs:      res.Freqs,
		Phones:     res.Phones,
		Hardspeech: cfg.Hardspeech,
	})
	if err != nil {
		return nil, err
	}

	asm, err := speech.NewAssembler(res, matcher, speech.Options{
		Aggregates: cfg.Analysis.Aggregates,
		Windows:    cfg.Analysis.MATTRWindows,
		TextScope:  cfg.Output.TextScope,
		Classifier: classifier,
	})
	if err != nil {
		return nil, err
	}

	speechDir := cfg.Output.SpeechDir
	if speechDir != "" {
		if cfg.Filter.Person != "" {
			speechDir = filepath.Join(speechDir, cfg.Filter.Person)
		}
		if err := os.MkdirAll(speechDir, 0755); err != nil {
			return nil, fmt.Errorf("create speech directory: %w", err)
		}
	}

	return &Pipeline{
		res:       res,
		assembler: asm,
		filter:    NewFilter(cfg.Filter),
		speechDir: speechDir,
	}, nil
}

// Columns returns the output headers
func (p *Pipeline) Columns() []string {
	return p.assembler.Columns()
}

// Task returns the task the pipeline runs
func (p *Pipeline) Task() string {
	return p.assembler.Task()
}

// FileReport is the outcome of one corpus file
type FileReport struct {
	Path     string
	Date     string
	Rows     []speech.Row
	Speeches int // Speeches that produced a result (with or without rows)
	Skipped  int // Speeches without a speaker reference or filtered out
	Unknown  int // Speeches by speakers missing from the registry
	Filtered bool
	Elapsed  time.Duration
}

// ProcessFile parses a corpus file and assembles the rows of all its
// speeches. A file with an invalid date fails as a whole.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (*FileReport, error) {
	start := time.Now()

	file, err := tei.ReadCorpusFile(path)
	if err != nil {
		return nil, err
	}

	report := &FileReport{Path: path, Date: file.Date}
	if !p.filter.AllowsYear(file.Year()) {
		report.Filtered = true
		return report, nil
	}

	memo := affiliation.NewMemo(0)
	for _, sp := range file.Speeches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if sp.Who == "" || !p.filter.AllowsPerson(sp.Who) {
			report.Skipped++
			continue
		}

		person, ok := p.res.Registry.Person(sp.Who)
		if !ok {
			log.Warn().Str("file", path).Str("speaker", sp.Who).Str("speech", sp.ID).Msg("unknown speaker, skipping speech")
			report.Unknown++
			continue
		}

		aff, err := memo.Get(person, file.Date, p.res.Registry.Relations)
		if err != nil {
			return nil, fmt.Errorf("resolve affiliation of %s: %w", sp.Who, err)
		}

		result := p.assembler.Assemble(ctx, file, sp, person, aff)
		report.Rows = append(report.Rows, result.Rows...)
		report.Speeches++

		if p.speechDir != "" {
			if err := p.saveSpeechText(sp, result.Text); err != nil {
				return nil, err
			}
		}
	}

	report.Elapsed = time.Since(start)
	log.Debug().
		Str("file", path).
		Int("speeches", report.Speeches).
		Int("rows", len(report.Rows)).
		Dur("elapsed", report.Elapsed).
		Msg("file processed")
	return report, nil
}

// saveSpeechText writes the speech text as <author>_<speech id>.txt
func (p *Pipeline) saveSpeechText(sp model.Speech, text string) error {
	name := fmt.Sprintf("%s_%s.txt", sp.Who, sp.ID)
	if err := os.WriteFile(filepath.Join(p.speechDir, name), []byte(text), 0644); err != nil {
		return fmt.Errorf("save speech text: %w", err)
	}
	return nil
}
