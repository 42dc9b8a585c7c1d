// Package tei reads IGC-Parla TEI documents: corpus files with speeches and
// the corpus metadata with speakers, parties and coalitions.
package tei

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/parlasf/internal/model"
	"github.com/ppiankov/parlasf/internal/timespan"
)

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// ErrNoDate is returned for corpus files without a bibl/date element
var ErrNoDate = errors.New("no bibl/date element")

func attr(el xml.StartElement, local string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Local == local && a.Name.Space != "xmlns" {
			return a.Value, true
		}
	}
	return "", false
}

func xmlID(el xml.StartElement) string {
	for _, a := range el.Attr {
		if a.Name.Local == "id" && (a.Name.Space == xmlNamespace || a.Name.Space == "xml") {
			return a.Value
		}
	}
	return ""
}

// stripRef removes the leading '#' of a local reference
func stripRef(ref string) string {
	return strings.TrimPrefix(ref, "#")
}

// frame is an open element of the corpus document
type frame struct {
	name      string
	token     int // Index into the current sentence, -1 for non-token elements
	childSeen bool
}

type corpusReader struct {
	file model.CorpusFile

	stack    []frame
	speech   *model.Speech
	sentence model.Sentence
	inSent   bool

	dateOpen  bool
	dateText  strings.Builder
	dateFound bool
}

// ReadCorpus parses a corpus document. Speeches and tokens keep document
// order. The file date is validated and an invalid one yields a
// *timespan.ParseError.
func ReadCorpus(r io.Reader, path string) (*model.CorpusFile, error) {
	cr := &corpusReader{file: model.CorpusFile{Path: path}}
	dec := xml.NewDecoder(r)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			cr.start(t)
		case xml.EndElement:
			cr.end(t)
		case xml.CharData:
			cr.text(t)
		}
	}

	if !cr.dateFound {
		return nil, fmt.Errorf("parse %s: %w", path, ErrNoDate)
	}
	if _, err := timespan.ParseDate(cr.file.Date); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cr.file, nil
}

// ReadCorpusFile parses the corpus file at path
func ReadCorpusFile(path string) (*model.CorpusFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus file: %w", err)
	}
	defer f.Close()
	return ReadCorpus(f, path)
}

func (cr *corpusReader) start(el xml.StartElement) {
	if n := len(cr.stack); n > 0 {
		cr.stack[n-1].childSeen = true
	}
	fr := frame{name: el.Name.Local, token: -1}

	switch el.Name.Local {
	case "date":
		if n := len(cr.stack); !cr.dateFound && n > 0 && cr.stack[n-1].name == "bibl" {
			cr.dateOpen = true
			cr.dateText.Reset()
		}
	case "u":
		who, _ := attr(el, "who")
		ana, _ := attr(el, "ana")
		source, _ := attr(el, "source")
		cr.speech = &model.Speech{
			ID:     xmlID(el),
			Who:    stripRef(who),
			Notes:  strings.Fields(ana),
			Source: source,
		}
	case "s":
		if cr.speech != nil && !cr.inSent {
			cr.inSent = true
			cr.sentence = nil
		}
	case "w", "pc":
		if cr.inSent {
			tok := model.Token{Punct: el.Name.Local == "pc"}
			if !tok.Punct {
				tok.Lemma, _ = attr(el, "lemma")
			}
			tok.Tag, _ = attr(el, "pos")
			_, tok.Joined = attr(el, "join")
			cr.sentence = append(cr.sentence, tok)
			fr.token = len(cr.sentence) - 1
		}
	}

	cr.stack = append(cr.stack, fr)
}

func (cr *corpusReader) end(el xml.EndElement) {
	if len(cr.stack) == 0 {
		return
	}
	cr.stack = cr.stack[:len(cr.stack)-1]

	switch el.Name.Local {
	case "date":
		if cr.dateOpen {
			cr.dateOpen = false
			cr.dateFound = true
			cr.file.Date = strings.TrimSpace(cr.dateText.String())
		}
	case "s":
		if cr.inSent && !cr.sInsideSentence() {
			cr.inSent = false
			cr.speech.Sentences = append(cr.speech.Sentences, cr.sentence)
			cr.sentence = nil
		}
	case "u":
		if cr.speech != nil {
			cr.file.Speeches = append(cr.file.Speeches, *cr.speech)
			cr.speech = nil
		}
	}
}

// sInsideSentence reports whether another s element is still open
func (cr *corpusReader) sInsideSentence() bool {
	for _, fr := range cr.stack {
		if fr.name == "s" {
			return true
		}
	}
	return false
}

func (cr *corpusReader) text(data xml.CharData) {
	if cr.dateOpen {
		cr.dateText.Write(data)
		return
	}
	n := len(cr.stack)
	if n == 0 {
		return
	}
	top := &cr.stack[n-1]
	if top.token < 0 || top.childSeen {
		return
	}
	cr.sentence[top.token].Word += string(data)
}
