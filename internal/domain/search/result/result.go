package result

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/nyaybodh/nyaybodh/internal/domain/search/mode"
)

// Metadata keys returned by semantic search.
const (
	Petitioner  = "PETITIONER"
	Respondent  = "RESPONDENT"
	Date        = "DATE"
	Judge       = "JUDGE"
	Court       = "COURT"
	CaseNumber  = "CASE_NUMBER"
	Lawyer      = "LAWYER"
	Org         = "ORG"
	OtherPerson = "OTHER_PERSON"
	Precedent   = "PRECEDENT"
	Provision   = "PROVISION"
	Statute     = "STATUTE"
)

// Metadata holds the structured fields of a semantic hit.
// Absent and null fields are not stored at all, so Get distinguishes them from "".
type Metadata map[string]string

// Get returns a metadata field and whether it is present.
func (m Metadata) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// UnmarshalJSON accepts any scalar per key; numbers and booleans are stringified,
// arrays are joined with ", " and nulls are dropped.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = nil
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	out := make(Metadata, len(raw))
	for k, v := range raw {
		s, ok := scalarString(v)
		if ok {
			out[k] = s
		}
	}
	*m = out
	return nil
}

func scalarString(v json.RawMessage) (string, bool) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return "", false
	}
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", false
		}
		return s, true
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(v, &items); err != nil {
			return "", false
		}
		parts := make([]string, 0, len(items))
		for _, it := range items {
			if s, ok := scalarString(it); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", "), true
	case '{':
		return string(v), true
	default:
		if f, err := strconv.ParseFloat(string(v), 64); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64), true
		}
		return string(v), true
	}
}

// Semantic is a single semantic search hit.
type Semantic struct {
	UUID     string   `json:"uuid"`
	FileName string   `json:"file_name,omitempty"`
	Title    string   `json:"title,omitempty"`
	Score    float64  `json:"score,omitempty"`
	Metadata Metadata `json:"metadata"`
	Summary  string   `json:"summary"`
}

// Entity is a single entity search hit.
type Entity struct {
	UUID       string `json:"uuid"`
	CaseName   string `json:"case_name,omitempty"`
	Petitioner string `json:"petitioner"`
	Respondent string `json:"respondent"`
	Entities   string `json:"entities"`
	Summary    string `json:"summary"`
}

// Set is the result set of one search, discriminated by its search type.
type Set struct {
	typ      mode.Type
	entity   []Entity
	semantic []Semantic
}

// NewEntitySet creates an entity result set.
func NewEntitySet(items []Entity) Set {
	if items == nil {
		items = []Entity{}
	}
	return Set{typ: mode.Entity, entity: items}
}

// NewSemanticSet creates a semantic result set.
func NewSemanticSet(items []Semantic) Set {
	if items == nil {
		items = []Semantic{}
	}
	return Set{typ: mode.Semantic, semantic: items}
}

// Empty returns the empty result set for a search type.
func Empty(t mode.Type) Set {
	if t == mode.Semantic {
		return NewSemanticSet(nil)
	}
	return NewEntitySet(nil)
}

// Type returns the search type the set belongs to.
func (s Set) Type() mode.Type { return s.typ }

// Entities returns the entity hits (nil for a semantic set).
func (s Set) Entities() []Entity { return s.entity }

// Semantics returns the semantic hits (nil for an entity set).
func (s Set) Semantics() []Semantic { return s.semantic }

// Len returns the number of hits.
func (s Set) Len() int {
	if s.typ == mode.Semantic {
		return len(s.semantic)
	}
	return len(s.entity)
}

// UUIDs returns hit identifiers in order.
func (s Set) UUIDs() []string {
	ids := make([]string, 0, s.Len())
	for _, e := range s.entity {
		ids = append(ids, e.UUID)
	}
	for _, r := range s.semantic {
		ids = append(ids, r.UUID)
	}
	return ids
}

// MarshalJSON emits {"EntityResultData": [...]} or {"SemanticResultData": [...]}.
func (s Set) MarshalJSON() ([]byte, error) {
	typ := s.typ
	if !typ.IsValid() {
		typ = mode.Entity
	}
	var items any = s.entity
	if typ == mode.Semantic {
		items = s.semantic
	}
	if s.Len() == 0 {
		items = []struct{}{}
	}
	data, err := json.Marshal(map[string]any{typ.ResultKey(): items})
	if err != nil {
		return nil, fmt.Errorf("marshal result set: %w", err)
	}
	return data, nil
}

// UnmarshalJSON reads the shape produced by MarshalJSON.
func (s *Set) UnmarshalJSON(data []byte) error {
	var raw struct {
		Entity   *[]Entity   `json:"EntityResultData"`
		Semantic *[]Semantic `json:"SemanticResultData"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal result set: %w", err)
	}
	switch {
	case raw.Semantic != nil:
		*s = NewSemanticSet(*raw.Semantic)
	case raw.Entity != nil:
		*s = NewEntitySet(*raw.Entity)
	default:
		return fmt.Errorf("unmarshal result set: no result data key")
	}
	return nil
}
