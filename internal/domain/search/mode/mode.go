package mode

import (
	"fmt"
	"strings"

	"github.com/nyaybodh/nyaybodh/internal/domain"
)

// Type is the search strategy offered by the remote API.
type Type string

// Search type constants.
const (
	// Entity matches on named entities (petitioner, respondent, judge, ...) extracted from cases.
	Entity Type = "entity"
	// Semantic matches on meaning similarity and returns structured metadata.
	Semantic Type = "semantic"
)

// IsValid checks if the type is one of the supported values.
func (t Type) IsValid() bool {
	return t == Entity || t == Semantic
}

// ResultKey is the JSON key the result set is stored under for this type.
func (t Type) ResultKey() string {
	if t == Semantic {
		return "SemanticResultData"
	}
	return "EntityResultData"
}

// Parse accepts "entity", "semantic" and the UI labels ("Entity Search", "Semantic search").
// An empty string yields Entity.
func Parse(s string) (Type, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Entity, nil
	}
	first, _, _ := strings.Cut(strings.ToLower(s), " ")
	t := Type(first)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidSearchType, s)
	}
	return t, nil
}
