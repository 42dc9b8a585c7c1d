package affiliation

import (
	"strings"
	"time"

	"github.com/ppiankov/parlasf/internal/model"
	"github.com/ppiankov/parlasf/internal/timespan"
)

// RoleMinister makes a speaker count as part of the majority regardless of party
const RoleMinister = "minister"

// RolePresident is assigned to records referencing the presidency
const RolePresident = "president"

var (
	// governmentIDs are the sentinel refs whose explicit role is taken over
	governmentIDs = map[string]struct{}{
		"HS": {}, "FV": {}, "LV": {},
		"GOV_HS": {}, "GOV_FV": {}, "GOV_LV": {},
	}

	// govCodePrefixes mark coalition annotation tags carrying a government code
	govCodePrefixes = []string{"LV", "HS", "FV"}
)

// Resolve computes the affiliation of a speaker on date.
//
// Records are applied in the given order and every covering record overwrites
// what earlier ones set, so the last qualifying record wins. Callers must keep
// the registry order.
func Resolve(records []model.AffiliationRecord, date time.Time, relations []model.CoalitionRelation) model.Affiliation {
	var aff model.Affiliation

	for _, rec := range records {
		if !rec.Span.Contains(date) {
			continue
		}

		if isPresidency(rec.Ref) {
			aff.Role = RolePresident
		} else if isParty(rec.Ref) {
			aff.Party = rec.Ref
		}

		for _, tag := range rec.Ana {
			if hasGovPrefix(tag) {
				aff.Gov = tag
			}
		}

		if aff.Role != RoleMinister {
			if _, ok := governmentIDs[rec.Ref]; ok {
				aff.Role = rec.Role
			}
		}
	}

	aff.Status = Status(aff.Party, aff.Role, date, relations)
	return aff
}

// ResolveOn parses the YYYY-MM-DD date and resolves the affiliation.
// An unparseable date yields a *timespan.ParseError.
func ResolveOn(records []model.AffiliationRecord, date string, relations []model.CoalitionRelation) (model.Affiliation, error) {
	d, err := timespan.ParseDate(date)
	if err != nil {
		return model.Affiliation{}, err
	}
	return Resolve(records, d, relations), nil
}

// Status determines the coalition status of a party on date.
// The first relation covering date decides.
func Status(partyID, role string, date time.Time, relations []model.CoalitionRelation) model.CoalitionStatus {
	if role == RoleMinister {
		return model.StatusMajority
	}
	if partyID == "" {
		return model.StatusUnknown
	}

	for _, rel := range relations {
		if !rel.Span.Contains(date) {
			continue
		}
		if rel.HasMember(partyID) {
			return model.StatusMajority
		}
		return model.StatusMinority
	}

	return model.StatusUnknown
}

func isPresidency(ref string) bool {
	return strings.Contains(ref, "President")
}

func isParty(ref string) bool {
	return strings.HasPrefix(ref, "party")
}

func hasGovPrefix(tag string) bool {
	for _, prefix := range govCodePrefixes {
		if strings.HasPrefix(tag, prefix) {
			return true
		}
	}
	return false
}
