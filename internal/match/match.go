// Package match implements the per-sentence pattern matchers. Each task
// has its own matcher and row schema; matchers never modify their input.
package match

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ppiankov/parlasf/internal/model"
)

// Row is one match produced for a sentence
type Row interface {
	// Values returns the match columns in schema order
	Values() []string
}

// Matcher finds task-specific patterns in a single sentence
type Matcher interface {
	// Task returns the task name the matcher implements
	Task() string
	// Columns returns the headers of the values produced by Row.Values
	Columns() []string
	// Match returns the rows for a sentence in token order
	Match(s model.Sentence) []Row
}

// FrequencySource supplies lemma frequencies
type FrequencySource interface {
	Freq(lemma, tag string) int
}

// Transcriber supplies phonetic transcriptions of surface forms
type Transcriber interface {
	Transcription(word string) string
}

// Options carries the matcher dependencies
type Options struct {
	Freqs      FrequencySource
	Phones     Transcriber
	Hardspeech model.HardspeechConfig
}

// New returns the matcher for a task
func New(task string, opts Options) (Matcher, error) {
	switch task {
	case model.TaskMainClause:
		return &MainClause{freqs: opts.Freqs}, nil
	case model.TaskSubClause:
		return &SubClause{freqs: opts.Freqs}, nil
	case model.TaskHardspeech:
		hs, err := NewHardspeech(opts.Freqs, opts.Phones, opts.Hardspeech)
		if err != nil {
			return nil, err
		}
		return hs, nil
	default:
		return nil, fmt.Errorf("unknown task %q (expected one of %s)", task, strings.Join(model.TaskTypes, ", "))
	}
}

// joinWords joins the surface forms of tokens with single spaces
func joinWords(tokens []model.Token) string {
	words := make([]string, len(tokens))
	for i, tok := range tokens {
		words[i] = tok.Word
	}
	return strings.Join(words, " ")
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func freqOf(src FrequencySource, tok model.Token) int {
	if src == nil {
		return 0
	}
	return src.Freq(tok.Lemma, tok.Tag)
}
