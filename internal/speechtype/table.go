// Package speechtype maps speech source URLs to speech types
package speechtype

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/czcorpus/cnc-gokit/collections"
	"github.com/ppiankov/parlasf/internal/model"
)

// CanonicalURL is the legacy speech URL the numeric fallback rebuilds
const CanonicalURL = "http://www.althingi.is/altext/raeda/%s/%s.html"

var numericParam = regexp.MustCompile(`=(\d+)`)

// Table maps a source URL (http scheme, no query) to a speech type
type Table map[string]string

// NormalizeURL converts the https scheme to http so scraped and corpus
// URLs compare equal
func NormalizeURL(url string) string {
	return strings.ReplaceAll(url, "https", "http")
}

// Resolve returns the speech type for a speech source.
// The source stripped of its query is looked up first. When that misses
// and the source carries at least two numeric query values, the canonical
// URL built from the first two is looked up. Anything else is NoSpeechType.
func (t Table) Resolve(source string) string {
	base, _, _ := strings.Cut(source, "?")
	if typ, ok := t[base]; ok {
		return typ
	}

	nums := numericParam.FindAllStringSubmatch(source, -1)
	if len(nums) < 2 {
		return model.NoSpeechType
	}
	if typ, ok := t[fmt.Sprintf(CanonicalURL, nums[0][1], nums[1][1])]; ok {
		return typ
	}
	return model.NoSpeechType
}

// Types returns the distinct speech types in the table, sorted
func (t Table) Types() []string {
	types := collections.NewSet[string]()
	for _, typ := range t {
		types.Add(typ)
	}
	return types.ToOrderedSlice()
}

// Read parses "url<TAB>type" rows without a header
func Read(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	table := make(Table)
	line := 0
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read speech type line %d: %w", line, err)
		}
		if len(rec) < 2 {
			continue
		}
		table[NormalizeURL(rec[0])] = rec[1]
	}
	return table, nil
}

// Load reads a speech type file
func Load(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open speech types: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Write stores the table as "url<TAB>type" rows in the given key order
func Write(w io.Writer, urls []string, table Table) error {
	writer := csv.NewWriter(w)
	writer.Comma = '\t'
	for _, url := range urls {
		if err := writer.Write([]string{url, table[url]}); err != nil {
			return fmt.Errorf("write speech type: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
