// Package lexdiv computes lexical diversity and rank statistics of speeches
package lexdiv

import (
	"sort"
	"strings"
	"unicode"
)

// Words lowercases the text, drops digits and punctuation and splits it on
// whitespace
func Words(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, text)
	return strings.Fields(cleaned)
}

// TTR is the type-token ratio of words, 0 for no words
func TTR(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	types := make(map[string]struct{}, len(words))
	for _, w := range words {
		types[w] = struct{}{}
	}
	return float64(len(types)) / float64(len(words))
}

// MATTR is the moving-average type-token ratio over windows of the given
// size. Texts shorter than the window fall back to TTR.
func MATTR(words []string, window int) float64 {
	if window <= 0 || window > len(words) {
		return TTR(words)
	}

	counts := make(map[string]int, window)
	for _, w := range words[:window] {
		counts[w]++
	}

	sum := float64(len(counts))
	for i := window; i < len(words); i++ {
		out := words[i-window]
		counts[out]--
		if counts[out] == 0 {
			delete(counts, out)
		}
		counts[words[i]]++
		sum += float64(len(counts))
	}

	windows := len(words) - window + 1
	return sum / float64(window) / float64(windows)
}

// Scores computes MATTR for every window size of a text
func Scores(text string, windows []int) []float64 {
	words := Words(text)
	scores := make([]float64, len(windows))
	for i, size := range windows {
		scores[i] = MATTR(words, size)
	}
	return scores
}

// Mean returns the arithmetic mean, 0 for no values
func Mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// Median returns the median, averaging the middle pair for even counts.
// The input is not modified.
func Median(values []int) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}
