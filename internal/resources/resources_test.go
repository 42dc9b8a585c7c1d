package resources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/parlasf/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const metadata = `<teiCorpus xmlns="http://www.tei-c.org/ns/1.0">
  <listOrg><org xml:id="party.S" role="politicalParty"><orgName>Samfylkingin</orgName></org></listOrg>
  <listPerson><person xml:id="A"><sex value="F"/><birth when="1970-01-01"/></person></listPerson>
</teiCorpus>`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestMetadataPath(t *testing.T) {
	dir := t.TempDir()

	_, err := MetadataPath(model.DataConfig{}, dir)
	assert.Error(t, err)

	meta := writeFile(t, dir, model.MetadataFileName, metadata)
	corpusFile := writeFile(t, dir, "a.xml", "<TEI/>")

	got, err := MetadataPath(model.DataConfig{}, dir)
	require.NoError(t, err)
	assert.Equal(t, meta, got)

	got, err = MetadataPath(model.DataConfig{}, corpusFile)
	require.NoError(t, err)
	assert.Equal(t, meta, got)

	got, err = MetadataPath(model.DataConfig{Metadata: "/x/meta.xml"}, dir)
	require.NoError(t, err)
	assert.Equal(t, "/x/meta.xml", got)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	data := model.DataConfig{
		SpeechTypes:  writeFile(t, dir, "types.tsv", "https://a/1.html\tsvar\n"),
		PhoneticDict: writeFile(t, dir, "pron.tsv", "akri\ta: k_h r I\n"),
		FreqDict:     writeFile(t, dir, "freq.json", `{"akur":{"nk":[42,7]}}`),
	}
	meta := writeFile(t, dir, "meta.xml", metadata)

	res, err := Load(data, meta, model.TaskHardspeech, nil)
	require.NoError(t, err)

	assert.Len(t, res.Registry.Persons, 1)
	assert.Equal(t, "svar", res.SpeechTypes["http://a/1.html"])
	assert.Equal(t, "a: k_h r I", res.Phones.Transcription("Akri"))
	assert.Equal(t, 42, res.Freqs.Freq("akur", "nkeþ"))

	res, err = Load(data, meta, model.TaskMainClause, nil)
	require.NoError(t, err)
	assert.Nil(t, res.Phones)
}

func TestLoad_MissingFile(t *testing.T) {
	dir := t.TempDir()
	meta := writeFile(t, dir, "meta.xml", metadata)

	_, err := Load(model.DataConfig{SpeechTypes: filepath.Join(dir, "nope.tsv")}, meta, model.TaskMainClause, nil)
	assert.Error(t, err)
}
