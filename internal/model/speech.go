package model

// SpeakerType classifies a speech by the annotation markers of the utterance
type SpeakerType string

const (
	SpeakerChair   SpeakerType = "chair"
	SpeakerGuest   SpeakerType = "guest"
	SpeakerRegular SpeakerType = "regular"
)

// NoSpeechType is used when the speech type cannot be resolved
const NoSpeechType = "none"

// Speech is one <u> element of a corpus file
type Speech struct {
	ID        string     // xml:id
	Who       string     // Speaker id without the leading '#', empty when missing
	Notes     []string   // Tokens of the ana attribute
	Source    string     // Source URL
	Sentences []Sentence // In document order
}

// CorpusFile is a parsed corpus file
type CorpusFile struct {
	Path     string
	Date     string // YYYY-MM-DD as found in the file
	Speeches []Speech
}

// Year returns the year part of the file date
func (f CorpusFile) Year() string {
	if len(f.Date) >= 4 {
		return f.Date[:4]
	}
	return f.Date
}

// SpeechMetadata is the speech-level part of every output row
type SpeechMetadata struct {
	Year        string
	Date        string
	SpeechType  string
	Author      string
	Sex         string
	BirthYear   string
	Affiliation Affiliation
	PartyName   string
	SpeakerType SpeakerType
	Source      string
	SpeechID    string
}

// Values returns the twelve leading metadata columns
func (m SpeechMetadata) Values() []string {
	return []string{
		m.Year,
		m.Date,
		m.SpeechType,
		m.Author,
		m.Sex,
		m.BirthYear,
		m.Affiliation.Role,
		string(m.SpeakerType),
		m.Affiliation.Party,
		m.PartyName,
		string(m.Affiliation.Status),
		m.Affiliation.Gov,
	}
}

// MetadataColumns are the headers of SpeechMetadata.Values
var MetadataColumns = []string{
	"year",
	"date",
	"speech_type",
	"person",
	"sex",
	"year_born",
	"role",
	"speaker_type",
	"party_id",
	"party_name",
	"party_status",
	"gov",
}

// ProvenanceColumns close every output row
var ProvenanceColumns = []string{
	"full_text",
	"speech_source",
	"speech_id",
}
