package match

import (
	"regexp"
	"strings"

	"github.com/ppiankov/parlasf/internal/model"
)

// Verb classes
const (
	ClassBe    = "be"
	ClassHave  = "have"
	ClassModal = "mod"
)

// auxVerbs maps the auxiliary verb lemmas to their class
var auxVerbs = map[string]string{
	"vera":  ClassBe,
	"hafa":  ClassHave,
	"munu":  ClassModal,
	"skulu": ClassModal,
}

// frontablePrefixes mark non-finite verb forms (participles, supine, infinitive)
var frontablePrefixes = []string{"sþ", "ss", "sn"}

var finiteTag = regexp.MustCompile(`^s.*[123]`)

// emptyExpletive is the tag of the fronted expletive "það"
const emptyExpletive = "fphen"

// FrontingColumns are the headers of FrontingRow values
var FrontingColumns = []string{
	"is_stylized",
	"relevant_text",
	"finite_verb",
	"non-finite_verb",
	"nfv_freq",
}

// FrontingRow is a stylistic fronting observation
type FrontingRow struct {
	Stylized  int    // 1 when the non-finite form precedes the auxiliary
	Text      string // Matched tokens joined by spaces
	VerbClass string // Class of the auxiliary
	Trigger   string // Lemma of the non-finite form
	Freq      int    // Corpus frequency of the non-finite form
}

func (r FrontingRow) Values() []string {
	return []string{
		itoa(r.Stylized),
		r.Text,
		r.VerbClass,
		r.Trigger,
		itoa(r.Freq),
	}
}

func auxClass(tok model.Token) (string, bool) {
	if tok.Punct {
		return "", false
	}
	class, ok := auxVerbs[tok.Lemma]
	return class, ok
}

func isFrontable(tok model.Token) bool {
	for _, prefix := range frontablePrefixes {
		if strings.HasPrefix(tok.Tag, prefix) {
			return true
		}
	}
	return false
}

func isFinite(tok model.Token) bool {
	return finiteTag.MatchString(tok.Tag)
}

// MainClause detects fronting at the start of a sentence
type MainClause struct {
	freqs FrequencySource
}

// NewMainClause creates a main clause matcher
func NewMainClause(freqs FrequencySource) *MainClause {
	return &MainClause{freqs: freqs}
}

func (m *MainClause) Task() string { return model.TaskMainClause }

func (m *MainClause) Columns() []string { return FrontingColumns }

// Match checks the sentence opening. Sentences of three tokens or fewer
// never match.
func (m *MainClause) Match(s model.Sentence) []Row {
	if len(s) <= 3 {
		return nil
	}

	// það + auxiliary + non-finite form
	if s[0].Tag == emptyExpletive && isFrontable(s[2]) {
		if class, ok := auxClass(s[1]); ok {
			return []Row{FrontingRow{
				Stylized:  0,
				Text:      joinWords(s[:3]),
				VerbClass: class,
				Trigger:   s[2].Lemma,
				Freq:      freqOf(m.freqs, s[2]),
			}}
		}
	}

	// fronted non-finite form + auxiliary
	if class, ok := auxClass(s[1]); ok && isFrontable(s[0]) {
		return []Row{FrontingRow{
			Stylized:  1,
			Text:      joinWords(s[:2]),
			VerbClass: class,
			Trigger:   s[0].Lemma,
			Freq:      freqOf(m.freqs, s[0]),
		}}
	}

	return nil
}

// relativeSem is the lemma and tag of the relative complementizer
const (
	relativeLemma = "sem"
	relativeTag   = "ct"
)

// SubClause detects fronting inside relative clauses introduced by "sem"
type SubClause struct {
	freqs FrequencySource
}

// NewSubClause creates a sub-clause matcher
func NewSubClause(freqs FrequencySource) *SubClause {
	return &SubClause{freqs: freqs}
}

func (m *SubClause) Task() string { return model.TaskSubClause }

func (m *SubClause) Columns() []string { return FrontingColumns }

// Match inspects every three token window starting with "sem". Overlapping
// windows are reported independently.
func (m *SubClause) Match(s model.Sentence) []Row {
	var rows []Row
	for i := 0; i+3 <= len(s); i++ {
		w := s[i : i+3]
		if w[0].Lemma != relativeLemma || w[0].Tag != relativeTag {
			continue
		}

		if class, ok := auxClass(w[1]); ok && isFinite(w[1]) && isFrontable(w[2]) {
			rows = append(rows, FrontingRow{
				Stylized:  0,
				Text:      joinWords(w),
				VerbClass: class,
				Trigger:   w[2].Lemma,
				Freq:      freqOf(m.freqs, w[2]),
			})
			continue
		}

		if class, ok := auxClass(w[2]); ok && isFinite(w[2]) && isFrontable(w[1]) {
			rows = append(rows, FrontingRow{
				Stylized:  1,
				Text:      joinWords(w),
				VerbClass: class,
				Trigger:   w[1].Lemma,
				Freq:      freqOf(m.freqs, w[1]),
			})
		}
	}
	return rows
}
