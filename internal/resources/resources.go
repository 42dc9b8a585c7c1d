// Package resources loads the read-only dictionaries shared by all workers
package resources

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/ppiankov/parlasf/internal/cache"
	"github.com/ppiankov/parlasf/internal/freq"
	"github.com/ppiankov/parlasf/internal/model"
	"github.com/ppiankov/parlasf/internal/phon"
	"github.com/ppiankov/parlasf/internal/speechtype"
	"github.com/ppiankov/parlasf/internal/tei"
	"github.com/rs/zerolog/log"
)

// Resources is the context passed to every component of an extraction run.
// Nothing in it is modified after Load returns.
type Resources struct {
	Registry    *model.Registry
	SpeechTypes speechtype.Table
	Phones      phon.Dict
	Freqs       freq.Table
}

// MetadataPath returns the configured metadata file, or the default one
// located in the corpus directory
func MetadataPath(data model.DataConfig, corpusPath string) (string, error) {
	if data.Metadata != "" {
		return data.Metadata, nil
	}
	dir := corpusPath
	if isFile, _ := fs.IsFile(corpusPath); isFile {
		dir = filepath.Dir(corpusPath)
	}
	candidate := filepath.Join(dir, model.MetadataFileName)
	if isFile, _ := fs.IsFile(candidate); isFile {
		return candidate, nil
	}
	return "", fmt.Errorf("metadata file %s not found in %s", model.MetadataFileName, dir)
}

// Load reads all dictionaries. The phonetic dictionary is only needed by
// the hardspeech task and is skipped for the others.
func Load(data model.DataConfig, metadataPath, task string, c cache.Cache) (*Resources, error) {
	start := time.Now()
	res := &Resources{}

	reg, err := tei.ReadMetadataFile(metadataPath)
	if err != nil {
		return nil, fmt.Errorf("load metadata: %w", err)
	}
	res.Registry = reg
	log.Info().
		Str("file", metadataPath).
		Int("persons", len(reg.Persons)).
		Int("parties", len(reg.Parties)).
		Int("relations", len(reg.Relations)).
		Msg("metadata loaded")

	res.SpeechTypes, err = speechtype.Load(data.SpeechTypes)
	if err != nil {
		return nil, err
	}
	log.Info().Str("file", data.SpeechTypes).Int("entries", len(res.SpeechTypes)).Msg("speech types loaded")

	if task == model.TaskHardspeech {
		res.Phones, err = phon.Load(data.PhoneticDict)
		if err != nil {
			return nil, err
		}
		log.Info().Str("file", data.PhoneticDict).Int("entries", len(res.Phones)).Msg("phonetic dictionary loaded")
	}

	mtime := ""
	if t, err := fs.GetFileMtime(data.FreqDict); err == nil {
		mtime = t.Format(time.RFC3339Nano)
	}
	res.Freqs, err = freq.Load(data.FreqDict, c, mtime)
	if err != nil {
		return nil, err
	}
	log.Info().Str("file", data.FreqDict).Int("entries", res.Freqs.Len()).Msg("frequency table loaded")

	log.Debug().Dur("elapsed", time.Since(start)).Msg("resources ready")
	return res, nil
}
