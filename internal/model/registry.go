package model

import "github.com/ppiankov/parlasf/internal/timespan"

// AffiliationRecord is one <affiliation> entry of a speaker
type AffiliationRecord struct {
	Ref  string        // Referenced org/role id without the leading '#'
	Span timespan.Span // Validity interval
	Role string        // Explicit role attribute (may be empty)
	Ana  []string      // Coalition annotation tags without the leading '#'
}

// CoalitionRelation lists the parties forming the ruling coalition during Span
type CoalitionRelation struct {
	Span    timespan.Span
	Members map[string]struct{} // Party ids without the leading '#'
}

// HasMember reports whether the party belongs to the coalition
func (r CoalitionRelation) HasMember(partyID string) bool {
	_, ok := r.Members[partyID]
	return ok
}

// Person is a speaker registry entry
type Person struct {
	ID           string
	Sex          string
	Birth        string // As found in the metadata, usually YYYY-MM-DD
	Affiliations []AffiliationRecord
}

// BirthYear returns the year part of the birth date
func (p Person) BirthYear() string {
	for i, c := range p.Birth {
		if c == '-' {
			return p.Birth[:i]
		}
	}
	return p.Birth
}

// Registry holds the read-only corpus metadata
type Registry struct {
	Persons   map[string]*Person
	Parties   map[string]string // party id -> name
	Relations []CoalitionRelation
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		Persons: make(map[string]*Person),
		Parties: make(map[string]string),
	}
}

// Person returns the registry entry for a speaker id
func (r *Registry) Person(id string) (*Person, bool) {
	p, ok := r.Persons[id]
	return p, ok
}

// PartyName returns the name of a party, empty if unknown
func (r *Registry) PartyName(id string) string {
	if id == "" {
		return ""
	}
	return r.Parties[id]
}
