package affiliation

import (
	"time"

	"github.com/ppiankov/parlasf/internal/cache"
	"github.com/ppiankov/parlasf/internal/model"
)

// Memo caches resolved affiliations per (speaker, date).
// Resolution is pure, so entries stay valid for the whole run.
type Memo struct {
	resolved *cache.MemoryCache[model.Affiliation]
}

// NewMemo creates a memo whose entries expire after ttl (0 means never)
func NewMemo(ttl time.Duration) *Memo {
	return &Memo{
		resolved: cache.NewMemoryCache[model.Affiliation](ttl, 10*time.Minute),
	}
}

func memoKey(speaker, date string) string {
	return speaker + "|" + date
}

// Get returns the affiliation of speaker on date, resolving it on first use
func (m *Memo) Get(person *model.Person, date string, relations []model.CoalitionRelation) (model.Affiliation, error) {
	key := memoKey(person.ID, date)
	if aff, found := m.resolved.Get(key, ""); found {
		return aff, nil
	}

	aff, err := ResolveOn(person.Affiliations, date, relations)
	if err != nil {
		return model.Affiliation{}, err
	}

	_ = m.resolved.Set(key, "", aff, 0)
	return aff, nil
}
