package pipeline

import (
	"strconv"

	"github.com/czcorpus/cnc-gokit/collections"
	"github.com/ppiankov/parlasf/internal/model"
)

// Filter restricts processing to selected years and one speaker
type Filter struct {
	years   *collections.Set[int]
	anyYear bool
	person  string
}

// NewFilter creates a filter from the configuration. No years means all years.
func NewFilter(cfg model.FilterConfig) *Filter {
	years := cfg.AllYears()
	return &Filter{
		years:   collections.NewSet(years...),
		anyYear: len(years) == 0,
		person:  cfg.Person,
	}
}

// AllowsYear reports whether files of the year are processed
func (f *Filter) AllowsYear(year string) bool {
	if f.anyYear {
		return true
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return false
	}
	return f.years.Contains(y)
}

// AllowsPerson reports whether speeches of the speaker are processed
func (f *Filter) AllowsPerson(id string) bool {
	return f.person == "" || f.person == id
}
