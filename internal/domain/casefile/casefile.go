// Package casefile holds the case documents behind search hits: recommendations and PDFs.
package casefile

import (
	"encoding/json"
	"fmt"

	"github.com/nyaybodh/nyaybodh/internal/domain/search/result"
)

// Case is a flattened case record as returned by the recommendation endpoint.
// Fields keeps every metadata key other than the ones lifted into named fields.
type Case struct {
	UUID       string          `json:"uuid"`
	Petitioner string          `json:"PETITIONER,omitempty"`
	Respondent string          `json:"RESPONDENT,omitempty"`
	Summary    string          `json:"summary,omitempty"`
	FileName   string          `json:"Filename,omitempty"`
	Fields     result.Metadata `json:"-"`
}

var liftedKeys = []string{"uuid", result.Petitioner, result.Respondent, "summary", "Filename"}

// UnmarshalJSON decodes the flat legacy shape; null values are dropped.
func (c *Case) UnmarshalJSON(data []byte) error {
	var m result.Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("case: %w", err)
	}
	*c = Case{
		UUID:       m["uuid"],
		Petitioner: m[result.Petitioner],
		Respondent: m[result.Respondent],
		Summary:    m["summary"],
		FileName:   m["Filename"],
	}
	for _, k := range liftedKeys {
		delete(m, k)
	}
	if len(m) > 0 {
		c.Fields = m
	}
	return nil
}

// MarshalJSON writes the same flat shape it reads.
func (c Case) MarshalJSON() ([]byte, error) {
	out := make(map[string]string, len(c.Fields)+len(liftedKeys))
	for k, v := range c.Fields {
		out[k] = v
	}
	out["uuid"] = c.UUID
	for k, v := range map[string]string{
		result.Petitioner: c.Petitioner,
		result.Respondent: c.Respondent,
		"summary":         c.Summary,
		"Filename":        c.FileName,
	} {
		if v != "" {
			out[k] = v
		}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal case: %w", err)
	}
	return data, nil
}

// Title is a human label: "Petitioner v. Respondent", falling back to the file name or uuid.
func (c Case) Title() string {
	switch {
	case c.Petitioner != "" && c.Respondent != "":
		return c.Petitioner + " v. " + c.Respondent
	case c.Petitioner != "":
		return c.Petitioner
	case c.FileName != "":
		return c.FileName
	default:
		return c.UUID
	}
}

// Recommendations is a target case and the cases most similar to it.
type Recommendations struct {
	Target      Case   `json:"target_case"`
	Recommended []Case `json:"recommended_cases"`
}

// PDF is a validated case document.
type PDF struct {
	UUID string
	Data []byte
}

// FileName is the name the document is stored under.
func (p PDF) FileName() string { return p.UUID + ".pdf" }
