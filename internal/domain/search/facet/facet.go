// Package facet derives the selectable filter values of a result set.
package facet

import (
	"regexp"
	"slices"
	"strings"

	"github.com/nyaybodh/nyaybodh/internal/domain/search/mode"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/result"
)

var (
	judgeRe      = regexp.MustCompile(`(?i)Judges?:\s*([^.]+)`)
	summaryYear  = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	metadataYear = regexp.MustCompile(`\d{4}`)
)

// Options are the facet values of one result set.
// Parties and judges keep first-seen order; years are sorted newest first.
type Options struct {
	Years   []string `json:"years"`
	Parties []string `json:"parties"`
	Judges  []string `json:"judges"`
}

// IsEmpty reports whether there is nothing to filter on.
func (o Options) IsEmpty() bool {
	return len(o.Years) == 0 && len(o.Parties) == 0 && len(o.Judges) == 0
}

// Extract computes the facets of results. It is a pure function of its input.
func Extract(results result.Set, t mode.Type) Options {
	var years, parties, judges orderedSet

	if t == mode.Semantic {
		for _, r := range results.Semantics() {
			if v, ok := r.Metadata.Get(result.Judge); ok {
				for _, j := range strings.Split(v, ",") {
					judges.add(j)
				}
			}
			if v, ok := r.Metadata.Get(result.Petitioner); ok {
				parties.add(v)
			}
			if v, ok := r.Metadata.Get(result.Respondent); ok {
				parties.add(v)
			}
			if v, ok := r.Metadata.Get(result.Date); ok {
				years.add(metadataYear.FindString(v))
			}
		}
	} else {
		for _, r := range results.Entities() {
			for _, m := range judgeRe.FindAllStringSubmatch(r.Summary, -1) {
				judges.add(m[1])
			}
			for _, field := range []string{r.Petitioner, r.Respondent, r.Entities} {
				for _, p := range strings.Split(field, ",") {
					parties.add(p)
				}
			}
			for _, y := range summaryYear.FindAllString(r.Summary, -1) {
				years.add(y)
			}
		}
	}

	sorted := years.values()
	slices.SortFunc(sorted, func(a, b string) int { return strings.Compare(b, a) })

	return Options{
		Years:   sorted,
		Parties: parties.values(),
		Judges:  judges.values(),
	}
}

// Get returns the values of a facet by filter dimension name.
func (o Options) Get(dimension string) []string {
	switch dimension {
	case "date":
		return o.Years
	case "party":
		return o.Parties
	case "judge":
		return o.Judges
	}
	return nil
}

type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

// add trims v and ignores placeholder values.
func (s *orderedSet) add(v string) {
	v = strings.TrimSpace(v)
	if skip(v) {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

func (s *orderedSet) values() []string {
	if s.items == nil {
		return []string{}
	}
	return s.items
}

func skip(v string) bool {
	return v == "" || v == "null" || v == "N/A"
}
