package match

import (
	"fmt"
	"regexp"

	"github.com/ppiankov/parlasf/internal/model"
)

// Built-in transcription patterns. Group 1 captures the plosive.
const (
	// Unaspirated plosive after a non-sonorant context
	HardspeechPattern = `.*[^cfhkpstvglmnr0CDNGT] ([ptkc])_h.*`
	// Plosive after a devoiced sonorant
	VoicedPattern = `.*[lmnr]_0 ([ptkc])[^_].*`
)

// DefaultContextWords is the size of the before/after context
const DefaultContextWords = 10

// HardspeechColumns are the headers of HardspeechRow values
var HardspeechColumns = []string{
	"before",
	"word",
	"after",
	"is_hardspeech",
	"plosive",
	"lemma",
	"pos",
	"word_freq",
}

// HardspeechRow is a hardspeech candidate
type HardspeechRow struct {
	Before  string
	Word    string
	After   string
	Flag    string // Left empty for manual annotation
	Plosive string
	Lemma   string
	Tag     string
	Freq    int
}

func (r HardspeechRow) Values() []string {
	return []string{
		r.Before,
		r.Word,
		r.After,
		r.Flag,
		r.Plosive,
		r.Lemma,
		r.Tag,
		itoa(r.Freq),
	}
}

// Hardspeech flags words whose transcription matches the plosive pattern
type Hardspeech struct {
	freqs   FrequencySource
	phones  Transcriber
	pattern *regexp.Regexp
	context int
}

// NewHardspeech creates a hardspeech matcher. The pattern is anchored at the
// start of the transcription and must have at least one capture group.
func NewHardspeech(freqs FrequencySource, phones Transcriber, cfg model.HardspeechConfig) (*Hardspeech, error) {
	expr := HardspeechPattern
	if cfg.Voiced {
		expr = VoicedPattern
	}
	if cfg.Pattern != "" {
		expr = cfg.Pattern
	}

	re, err := regexp.Compile(`^(?:` + expr + `)`)
	if err != nil {
		return nil, fmt.Errorf("compile hardspeech pattern: %w", err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("hardspeech pattern %q has no capture group", expr)
	}

	ctx := cfg.ContextWords
	if ctx <= 0 {
		ctx = DefaultContextWords
	}

	return &Hardspeech{
		freqs:   freqs,
		phones:  phones,
		pattern: re,
		context: ctx,
	}, nil
}

func (m *Hardspeech) Task() string { return model.TaskHardspeech }

func (m *Hardspeech) Columns() []string { return HardspeechColumns }

func (m *Hardspeech) Match(s model.Sentence) []Row {
	if m.phones == nil {
		return nil
	}

	var rows []Row
	for i, tok := range s {
		transcription := m.phones.Transcription(tok.Word)
		if transcription == "" {
			continue
		}
		groups := m.pattern.FindStringSubmatch(transcription)
		if groups == nil {
			continue
		}

		before, after := m.surroundings(s, i)
		rows = append(rows, HardspeechRow{
			Before:  before,
			Word:    tok.Word,
			After:   after,
			Plosive: groups[1],
			Lemma:   tok.Lemma,
			Tag:     tok.Tag,
			Freq:    freqOf(m.freqs, tok),
		})
	}
	return rows
}

// surroundings returns up to m.context words on each side of position i
func (m *Hardspeech) surroundings(s model.Sentence, i int) (string, string) {
	start := i - m.context
	if start < 0 {
		start = 0
	}
	end := i + 1 + m.context
	if end > len(s) {
		end = len(s)
	}
	return joinWords(s[start:i]), joinWords(s[i+1 : end])
}
