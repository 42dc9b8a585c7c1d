package freq

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"
)

// Entry holds the corpus frequency and the 1-based rank of a (lemma, tag) pair.
// It is stored as a two element JSON array.
type Entry [2]int

// Freq returns the frequency part of the entry
func (e Entry) Freq() int { return e[0] }

// Rank returns the rank part of the entry
func (e Entry) Rank() int { return e[1] }

// Table maps lemma -> coarse tag -> entry
type Table map[string]map[string]Entry

// CoarseKey reduces a morphosyntactic tag to the key used by the table.
// Noun tags keep their first two characters, all other tags their first one.
func CoarseKey(tag string) string {
	if tag == "" {
		return ""
	}
	if tag[0] == 'n' && len(tag) >= 2 {
		return tag[:2]
	}
	return tag[:1]
}

// Lookup returns the frequency and rank of lemma with the given full tag.
// Misses, including an empty tag, yield (0, 0).
func (t Table) Lookup(lemma, tag string) (freq, rank int) {
	key := CoarseKey(tag)
	if key == "" {
		return 0, 0
	}
	tags, ok := t[lemma]
	if !ok {
		return 0, 0
	}
	entry, ok := tags[key]
	if !ok {
		return 0, 0
	}
	return entry.Freq(), entry.Rank()
}

// Freq is Lookup without the rank
func (t Table) Freq(lemma, tag string) int {
	f, _ := t.Lookup(lemma, tag)
	return f
}

// Rank is Lookup without the frequency
func (t Table) Rank(lemma, tag string) int {
	_, r := t.Lookup(lemma, tag)
	return r
}

// Add stores an entry, replacing any earlier one with the same key
func (t Table) Add(lemma, tag string, freq, rank int) {
	tags, ok := t[lemma]
	if !ok {
		tags = make(map[string]Entry)
		t[lemma] = tags
	}
	tags[tag] = Entry{freq, rank}
}

// Len returns the number of (lemma, tag) entries
func (t Table) Len() int {
	n := 0
	for _, tags := range t {
		n += len(tags)
	}
	return n
}

// DecodeJSON parses the JSON form of a table
func DecodeJSON(data []byte) (Table, error) {
	table := make(Table)
	if err := sonic.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("decode frequency table: %w", err)
	}
	return table, nil
}

// EncodeJSON serializes the table
func (t Table) EncodeJSON() ([]byte, error) {
	data, err := sonic.ConfigStd.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode frequency table: %w", err)
	}
	return data, nil
}

// LoadJSON reads a table from a JSON file
func LoadJSON(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read frequency table: %w", err)
	}
	return DecodeJSON(data)
}

// WriteJSON writes the table to a JSON file
func (t Table) WriteJSON(path string) error {
	data, err := t.EncodeJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write frequency table: %w", err)
	}
	return nil
}
