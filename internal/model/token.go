package model

// Token is a single word or punctuation node of a sentence
type Token struct {
	Word   string `json:"word"`
	Lemma  string `json:"lemma,omitempty"`
	Tag    string `json:"tag,omitempty"`    // Morphosyntactic tag, empty when the corpus has none
	Joined bool   `json:"joined,omitempty"` // No whitespace between this token and the next one
	Punct  bool   `json:"punct,omitempty"`  // Token comes from a <pc> node
}

// HasLemma reports whether the token is a lemma-bearing word
func (t Token) HasLemma() bool {
	return !t.Punct
}

// Sentence is an ordered token sequence
type Sentence []Token

// Words returns the surface forms of the sentence tokens
func (s Sentence) Words() []string {
	words := make([]string, len(s))
	for i, tok := range s {
		words[i] = tok.Word
	}
	return words
}
