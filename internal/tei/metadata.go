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
	"github.com/rs/zerolog/log"
)

const rolePoliticalParty = "politicalParty"

type xmlValue struct {
	Value string `xml:"value,attr"`
}

type xmlBirth struct {
	When string `xml:"when,attr"`
}

type xmlAffiliation struct {
	Ref  string `xml:"ref,attr"`
	Role string `xml:"role,attr"`
	From string `xml:"from,attr"`
	To   string `xml:"to,attr"`
	Ana  string `xml:"ana,attr"`
}

type xmlPerson struct {
	ID           string           `xml:"http://www.w3.org/XML/1998/namespace id,attr"`
	Sex          []xmlValue       `xml:"sex"`
	Birth        []xmlBirth       `xml:"birth"`
	Affiliations []xmlAffiliation `xml:"affiliation"`
}

type xmlOrgName struct {
	Text string `xml:",chardata"`
}

type xmlOrg struct {
	ID       string       `xml:"http://www.w3.org/XML/1998/namespace id,attr"`
	Role     string       `xml:"role,attr"`
	OrgNames []xmlOrgName `xml:"orgName"`
}

type xmlRelation struct {
	Name   string `xml:"name,attr"`
	Mutual string `xml:"mutual,attr"`
	From   string `xml:"from,attr"`
	To     string `xml:"to,attr"`
}

// ReadMetadata builds the speaker registry from the corpus metadata document.
// Interval dates are parsed strictly; relations without member parties are
// skipped.
func ReadMetadata(r io.Reader) (*model.Registry, error) {
	reg := model.NewRegistry()
	dec := xml.NewDecoder(r)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse metadata: %w", err)
		}

		el, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch el.Name.Local {
		case "person":
			var p xmlPerson
			if err := dec.DecodeElement(&p, &el); err != nil {
				return nil, fmt.Errorf("decode person: %w", err)
			}
			person, err := p.toPerson()
			if err != nil {
				return nil, fmt.Errorf("person %s: %w", p.ID, err)
			}
			reg.Persons[person.ID] = person

		case "org":
			var o xmlOrg
			if err := dec.DecodeElement(&o, &el); err != nil {
				return nil, fmt.Errorf("decode org: %w", err)
			}
			if o.Role == rolePoliticalParty && len(o.OrgNames) > 0 {
				reg.Parties[o.ID] = strings.TrimSpace(o.OrgNames[0].Text)
			}

		case "relation":
			var rel xmlRelation
			if err := dec.DecodeElement(&rel, &el); err != nil {
				return nil, fmt.Errorf("decode relation: %w", err)
			}
			if rel.Mutual == "" {
				log.Debug().Str("name", rel.Name).Msg("skipping relation without mutual parties")
				continue
			}
			span, err := timespan.ParseSpan(rel.From, rel.To)
			if err != nil {
				return nil, fmt.Errorf("relation %s: %w", rel.Name, err)
			}
			members := make(map[string]struct{})
			for _, ref := range strings.Fields(rel.Mutual) {
				members[stripRef(ref)] = struct{}{}
			}
			reg.Relations = append(reg.Relations, model.CoalitionRelation{
				Span:    span,
				Members: members,
			})
		}
	}

	return reg, nil
}

// ReadMetadataFile reads the metadata document at path
func ReadMetadataFile(path string) (*model.Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open metadata: %w", err)
	}
	defer f.Close()
	return ReadMetadata(f)
}

func (p xmlPerson) toPerson() (*model.Person, error) {
	person := &model.Person{ID: p.ID}
	if len(p.Sex) > 0 {
		person.Sex = p.Sex[0].Value
	}
	if len(p.Birth) > 0 {
		person.Birth = p.Birth[0].When
	}

	for _, a := range p.Affiliations {
		span, err := timespan.ParseSpan(a.From, a.To)
		if err != nil {
			return nil, fmt.Errorf("affiliation %s: %w", a.Ref, err)
		}
		var ana []string
		for _, tag := range strings.Fields(a.Ana) {
			ana = append(ana, stripRef(tag))
		}
		person.Affiliations = append(person.Affiliations, model.AffiliationRecord{
			Ref:  stripRef(a.Ref),
			Span: span,
			Role: a.Role,
			Ana:  ana,
		})
	}
	return person, nil
}
