package filter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nyaybodh/nyaybodh/internal/domain/search/mode"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/result"
)

// Dimension is a filterable facet.
type Dimension string

// Facet dimensions.
const (
	Date  Dimension = "date"
	Party Dimension = "party"
	Judge Dimension = "judge"
)

// Dimensions lists all dimensions in display order.
var Dimensions = []Dimension{Date, Party, Judge}

// IsValid reports whether d is a known dimension.
func (d Dimension) IsValid() bool {
	return d == Date || d == Party || d == Judge
}

// ParseDimension accepts "date"/"year", "party" and "judge".
func ParseDimension(s string) (Dimension, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "date", "year":
		return Date, nil
	case "party":
		return Party, nil
	case "judge":
		return Judge, nil
	default:
		return "", fmt.Errorf("unknown filter dimension %q", s)
	}
}

// Selection is the active filter selection: accepted values per dimension.
// The zero value is an empty selection.
type Selection struct {
	date  []string
	party []string
	judge []string
}

// NewSelection builds a selection from value lists; duplicates are dropped.
func NewSelection(dates, parties, judges []string) Selection {
	var s Selection
	for _, v := range dates {
		s.add(Date, v)
	}
	for _, v := range parties {
		s.add(Party, v)
	}
	for _, v := range judges {
		s.add(Judge, v)
	}
	return s
}

// Values returns the selected values of a dimension in selection order.
func (s Selection) Values(d Dimension) []string {
	return slices.Clone(*s.slot(d))
}

// Has reports whether value is selected in dimension d.
func (s Selection) Has(d Dimension, value string) bool {
	return slices.Contains(*s.slot(d), value)
}

// IsEmpty reports whether no dimension constrains the results.
func (s Selection) IsEmpty() bool {
	return len(s.date) == 0 && len(s.party) == 0 && len(s.judge) == 0
}

// Toggle adds value to dimension d, or removes it if already selected.
// Returns whether the value is selected afterwards.
func (s *Selection) Toggle(d Dimension, value string) bool {
	slot := s.slot(d)
	if i := slices.Index(*slot, value); i >= 0 {
		*slot = slices.Delete(slices.Clone(*slot), i, i+1)
		return false
	}
	s.add(d, value)
	return true
}

// Reset clears every dimension.
func (s *Selection) Reset() {
	*s = Selection{}
}

func (s *Selection) add(d Dimension, value string) {
	slot := s.slot(d)
	if !slices.Contains(*slot, value) {
		*slot = append(slices.Clone(*slot), value)
	}
}

func (s *Selection) slot(d Dimension) *[]string {
	switch d {
	case Date:
		return &s.date
	case Party:
		return &s.party
	case Judge:
		return &s.judge
	default:
		var none []string
		return &none
	}
}

// Apply returns the hits that satisfy the selection, in their original order.
// Within a dimension any selected value may match (OR); every non-empty dimension
// must match (AND). Matching is substring containment against the relevant fields.
func Apply(results result.Set, sel Selection, t mode.Type) result.Set {
	if sel.IsEmpty() {
		return results
	}
	if t == mode.Semantic {
		kept := make([]result.Semantic, 0, results.Len())
		for _, r := range results.Semantics() {
			if matchSemantic(&r, sel) {
				kept = append(kept, r)
			}
		}
		return result.NewSemanticSet(kept)
	}
	kept := make([]result.Entity, 0, results.Len())
	for _, r := range results.Entities() {
		if matchEntity(&r, sel) {
			kept = append(kept, r)
		}
	}
	return result.NewEntitySet(kept)
}

func matchSemantic(r *result.Semantic, sel Selection) bool {
	date, hasDate := r.Metadata.Get(result.Date)
	pet, hasPet := r.Metadata.Get(result.Petitioner)
	resp, hasResp := r.Metadata.Get(result.Respondent)
	judge, hasJudge := r.Metadata.Get(result.Judge)

	return anyMatch(sel.date, func(v string) bool { return hasDate && strings.Contains(date, v) }) &&
		anyMatch(sel.party, func(v string) bool {
			return (hasPet && strings.Contains(pet, v)) || (hasResp && strings.Contains(resp, v))
		}) &&
		anyMatch(sel.judge, func(v string) bool { return hasJudge && strings.Contains(judge, v) })
}

// Entity hits carry no structured date or judge, so both are matched against the summary.
func matchEntity(r *result.Entity, sel Selection) bool {
	return anyMatch(sel.date, func(v string) bool { return strings.Contains(r.Summary, v) }) &&
		anyMatch(sel.party, func(v string) bool {
			return strings.Contains(r.Petitioner, v) ||
				strings.Contains(r.Respondent, v) ||
				strings.Contains(r.Entities, v)
		}) &&
		anyMatch(sel.judge, func(v string) bool { return strings.Contains(r.Summary, v) })
}

// anyMatch is true for an empty selection.
func anyMatch(selected []string, match func(string) bool) bool {
	if len(selected) == 0 {
		return true
	}
	return slices.ContainsFunc(selected, match)
}
