// Package speech turns parsed speeches into output rows
package speech

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ppiankov/parlasf/internal/match"
	"github.com/ppiankov/parlasf/internal/model"
	"github.com/ppiankov/parlasf/internal/resources"
)

// Text scopes of the full_text column
const (
	ScopeSpeech   = "speech"
	ScopeSentence = "sentence"
)

// Speaker annotation markers
const (
	noteChair = "#chair"
	noteGuest = "#guest"
)

// TypeClassifier resolves speech types the lookup table misses
type TypeClassifier interface {
	ClassifySpeechType(ctx context.Context, text, source string) string
}

// Options controls what the assembler computes
type Options struct {
	Aggregates bool
	Windows    []int
	TextScope  string
	Classifier TypeClassifier // Optional
}

// Assembler builds output rows for one task
type Assembler struct {
	res     *resources.Resources
	matcher match.Matcher
	opts    Options
}

// NewAssembler creates an assembler for the matcher's task
func NewAssembler(res *resources.Resources, matcher match.Matcher, opts Options) (*Assembler, error) {
	switch opts.TextScope {
	case "":
		opts.TextScope = ScopeSpeech
	case ScopeSpeech, ScopeSentence:
	default:
		return nil, fmt.Errorf("unknown text scope %q (expected %s or %s)", opts.TextScope, ScopeSpeech, ScopeSentence)
	}
	return &Assembler{
		res:     res,
		matcher: matcher,
		opts:    opts,
	}, nil
}

// Columns returns the headers of the rows produced by Assemble
func (a *Assembler) Columns() []string {
	cols := append([]string{}, model.MetadataColumns...)
	cols = append(cols, a.matcher.Columns()...)
	if a.opts.Aggregates {
		cols = append(cols, AggregateColumns(a.opts.Windows)...)
	}
	return append(cols, model.ProvenanceColumns...)
}

// Task returns the task of the underlying matcher
func (a *Assembler) Task() string {
	return a.matcher.Task()
}

// Result is the outcome of one speech
type Result struct {
	Metadata model.SpeechMetadata
	Text     string // Reconstructed speech text
	Rows     []Row
}

// Row is one output line
type Row struct {
	Metadata   model.SpeechMetadata
	Match      match.Row
	Aggregates *Aggregates // Nil when aggregates are disabled
	Text       string
}

// Values returns the row in column order
func (r Row) Values() []string {
	vals := r.Metadata.Values()
	vals = append(vals, r.Match.Values()...)
	if r.Aggregates != nil {
		vals = append(vals, r.Aggregates.Values()...)
	}
	return append(vals, r.Text, r.Metadata.Source, r.Metadata.SpeechID)
}

// SpeakerTypeOf classifies a speech by its annotation notes
func SpeakerTypeOf(notes []string) model.SpeakerType {
	for _, n := range notes {
		if n == noteChair {
			return model.SpeakerChair
		}
	}
	for _, n := range notes {
		if n == noteGuest {
			return model.SpeakerGuest
		}
	}
	return model.SpeakerRegular
}

// ReconstructText concatenates the speech tokens, separating them with a
// space unless a token is joined to its successor. The trailing space is
// dropped.
func ReconstructText(sentences []model.Sentence) string {
	var b strings.Builder
	for _, s := range sentences {
		for _, tok := range s {
			b.WriteString(tok.Word)
			if !tok.Joined {
				b.WriteByte(' ')
			}
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Metadata builds the speech level metadata of a speech
func (a *Assembler) Metadata(file *model.CorpusFile, sp model.Speech, person *model.Person, aff model.Affiliation) model.SpeechMetadata {
	return model.SpeechMetadata{
		Year:        file.Year(),
		Date:        file.Date,
		SpeechType:  a.res.SpeechTypes.Resolve(sp.Source),
		Author:      sp.Who,
		Sex:         person.Sex,
		BirthYear:   person.BirthYear(),
		Affiliation: aff,
		PartyName:   a.res.Registry.PartyName(aff.Party),
		SpeakerType: SpeakerTypeOf(sp.Notes),
		Source:      sp.Source,
		SpeechID:    sp.ID,
	}
}

// Assemble runs the matcher over every sentence of a speech and returns
// the rows in sentence and token order
func (a *Assembler) Assemble(ctx context.Context, file *model.CorpusFile, sp model.Speech, person *model.Person, aff model.Affiliation) *Result {
	meta := a.Metadata(file, sp, person, aff)
	text := ReconstructText(sp.Sentences)

	if meta.SpeechType == model.NoSpeechType && a.opts.Classifier != nil {
		meta.SpeechType = a.opts.Classifier.ClassifySpeechType(ctx, text, sp.Source)
	}

	var agg *Aggregates
	if a.opts.Aggregates {
		computed := ComputeAggregates(text, sp.Sentences, a.res.Freqs, a.opts.Windows)
		agg = &computed
	}

	res := &Result{Metadata: meta, Text: text}
	for _, s := range sp.Sentences {
		matches := a.matcher.Match(s)
		if len(matches) == 0 {
			continue
		}
		rowText := text
		if a.opts.TextScope == ScopeSentence {
			rowText = strings.Join(s.Words(), " ")
		}
		for _, m := range matches {
			res.Rows = append(res.Rows, Row{
				Metadata:   meta,
				Match:      m,
				Aggregates: agg,
				Text:       rowText,
			})
		}
	}
	return res
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
