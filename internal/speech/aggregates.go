package speech

import (
	"strconv"

	"github.com/ppiankov/parlasf/internal/lexdiv"
	"github.com/ppiankov/parlasf/internal/model"
)

// RankSource supplies frequency ranks
type RankSource interface {
	Rank(lemma, tag string) int
}

// Aggregates are the speech level lexical statistics
type Aggregates struct {
	MATTR      []float64 // One score per window size
	RankMean   float64
	RankMedian float64
	WordCount  int
}

// AggregateColumns returns the aggregate headers for the window sizes
func AggregateColumns(windows []int) []string {
	cols := make([]string, 0, len(windows)+3)
	for _, w := range windows {
		cols = append(cols, "mattr_"+strconv.Itoa(w))
	}
	return append(cols, "word_rank_mean", "word_rank_median", "speech_word_count")
}

// Values returns the aggregates in column order
func (a Aggregates) Values() []string {
	vals := make([]string, 0, len(a.MATTR)+3)
	for _, s := range a.MATTR {
		vals = append(vals, formatFloat(s))
	}
	return append(vals,
		formatFloat(a.RankMean),
		formatFloat(a.RankMedian),
		strconv.Itoa(a.WordCount),
	)
}

// ComputeAggregates scores the speech text and collects the ranks of all
// lemma-bearing tokens. Unknown lemmas contribute rank 0.
func ComputeAggregates(text string, sentences []model.Sentence, ranks RankSource, windows []int) Aggregates {
	var collected []int
	for _, s := range sentences {
		for _, tok := range s {
			if !tok.HasLemma() {
				continue
			}
			rank := 0
			if ranks != nil {
				rank = ranks.Rank(tok.Lemma, tok.Tag)
			}
			collected = append(collected, rank)
		}
	}

	return Aggregates{
		MATTR:      lexdiv.Scores(text, windows),
		RankMean:   lexdiv.Mean(collected),
		RankMedian: lexdiv.Median(collected),
		WordCount:  len(collected),
	}
}
