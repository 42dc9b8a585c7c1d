// Package phon holds the pronunciation dictionary used for hardspeech
// detection.
package phon

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Dict maps NFC word forms, cased as in the dictionary file, to their
// phonetic transcription
type Dict map[string]string

// Key normalizes a surface form for lookup. Only the looked-up word is
// lower-cased, so an entry written with capitals is never found.
func Key(word string) string {
	return strings.ToLower(norm.NFC.String(word))
}

// Transcription returns the transcription of word, empty when unknown
func (d Dict) Transcription(word string) string {
	return d[Key(word)]
}

// Read parses a tab separated dictionary. The first column is the word form,
// the last column the transcription. Later rows override earlier ones.
func Read(r io.Reader) (Dict, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	dict := make(Dict)
	line := 0
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read pronunciation line %d: %w", line, err)
		}
		if len(rec) < 2 {
			continue
		}
		dict[norm.NFC.String(rec[0])] = rec[len(rec)-1]
	}
	return dict, nil
}

// Load reads a dictionary file
func Load(path string) (Dict, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pronunciation dictionary: %w", err)
	}
	defer f.Close()
	return Read(f)
}
