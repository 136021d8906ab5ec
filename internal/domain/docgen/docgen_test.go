package docgen

import (
	"errors"
	"slices"
	"strconv"
	"strings"
	"testing"
)

func fill(t Template, extra map[string]string) map[string]string {
	answers := make(map[string]string)
	for _, f := range t.Fields {
		if _, ok := t.Defaults[f]; ok {
			continue
		}
		answers[expand(f, 0)] = "v:" + f
	}
	for k, v := range extra {
		answers[k] = v
	}
	return answers
}

func expand(field string, idx int) string {
	return strings.ReplaceAll(field, "[]", strconv.Itoa(idx))
}

func TestLookup(t *testing.T) {
	tmpl, err := Lookup("  Will-Deed ")
	if err != nil || tmpl.Kind != WillDeed || tmpl.Endpoint != "/generate_will_deed_pdf" {
		t.Fatalf("Lookup = %+v, %v", tmpl, err)
	}
	if _, err := Lookup("affidavit"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestKinds(t *testing.T) {
	kinds := Kinds()
	if len(kinds) != 8 {
		t.Fatalf("kinds = %v", kinds)
	}
	if !slices.IsSorted(kinds) {
		t.Errorf("kinds not sorted: %v", kinds)
	}
	for _, k := range kinds {
		tmpl, err := Lookup(string(k))
		if err != nil || tmpl.Endpoint == "" || tmpl.Title == "" || len(tmpl.Fields) == 0 {
			t.Errorf("%s: incomplete template %+v", k, tmpl)
		}
	}
}

func TestBuild_Flat(t *testing.T) {
	tmpl, _ := Lookup(string(PowerOfAttorney))
	form, err := tmpl.Build(fill(tmpl, map[string]string{"principal_name": "  Asha Rao "}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if form.Body["principal_name"] != "Asha Rao" {
		t.Errorf("principal_name = %q", form.Body["principal_name"])
	}
	if len(form.Body) != len(tmpl.Fields) {
		t.Errorf("body has %d keys, want %d", len(form.Body), len(tmpl.Fields))
	}
	if form.FileName() != "power-of-attorney.pdf" {
		t.Errorf("FileName = %q", form.FileName())
	}
}

func TestBuild_Nested(t *testing.T) {
	tmpl, _ := Lookup(string(LandSaleDeed))
	form, err := tmpl.Build(fill(tmpl, map[string]string{"land_details.boundaries.north": "Road"}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	land, ok := form.Body["land_details"].(map[string]any)
	if !ok {
		t.Fatalf("land_details = %T", form.Body["land_details"])
	}
	bounds, ok := land["boundaries"].(map[string]any)
	if !ok || bounds["north"] != "Road" || bounds["west"] != "v:land_details.boundaries.west" {
		t.Errorf("boundaries = %v", land["boundaries"])
	}
	if land["size"] != "v:land_details.size" {
		t.Errorf("size = %v", land["size"])
	}
}

func TestBuild_RepeatedGroup(t *testing.T) {
	tmpl, _ := Lookup(string(WillDeed))
	answers := fill(tmpl, nil)
	for _, sub := range []string{"name", "father_name", "address", "age", "religion", "occupation"} {
		answers["executors.1."+sub] = "second " + sub
	}

	form, err := tmpl.Build(answers)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	execs, ok := form.Body["executors"].([]any)
	if !ok || len(execs) != 2 {
		t.Fatalf("executors = %#v", form.Body["executors"])
	}
	second, _ := execs[1].(map[string]any)
	if second["name"] != "second name" || second["occupation"] != "second occupation" {
		t.Errorf("second executor = %v", second)
	}
	if form.Body["file_name"] != "will_deed.pdf" || form.FileName() != "will_deed.pdf" {
		t.Errorf("file_name default = %v", form.Body["file_name"])
	}
}

func TestBuild_Errors(t *testing.T) {
	will, _ := Lookup(string(WillDeed))
	nda, _ := Lookup(string(NDA))

	tests := []struct {
		name        string
		tmpl        Template
		answers     map[string]string
		wantMissing []string
		wantUnknown []string
	}{
		{
			name:        "blank after trim",
			tmpl:        nda,
			answers:     fill(nda, map[string]string{"purpose": "   "}),
			wantMissing: []string{"purpose"},
		},
		{
			name:        "unknown field",
			tmpl:        nda,
			answers:     fill(nda, map[string]string{"party3_name": "x"}),
			wantUnknown: []string{"party3_name"},
		},
		{
			name:        "incomplete executor",
			tmpl:        will,
			answers:     fill(will, map[string]string{"executors.1.name": "half"}),
			wantMissing: []string{
				"executors.1.address", "executors.1.age", "executors.1.father_name",
				"executors.1.occupation", "executors.1.religion",
			},
		},
		{
			name:        "entry past a gap",
			tmpl:        will,
			answers:     fill(will, map[string]string{"executors.2.name": "x"}),
			wantUnknown: []string{"executors.2.name"},
		},
		{
			name: "no executors",
			tmpl: will,
			answers: func() map[string]string {
				a := fill(will, nil)
				for k := range a {
					if strings.HasPrefix(k, "executors.") {
						delete(a, k)
					}
				}
				return a
			}(),
			wantMissing: []string{
				"executors.0.address", "executors.0.age", "executors.0.father_name",
				"executors.0.name", "executors.0.occupation", "executors.0.religion",
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.tmpl.Build(tc.answers)
			var ferr *FieldError
			if !errors.As(err, &ferr) {
				t.Fatalf("expected *FieldError, got %v", err)
			}
			if !slices.Equal(ferr.Missing, tc.wantMissing) {
				t.Errorf("missing = %v, want %v", ferr.Missing, tc.wantMissing)
			}
			if !slices.Equal(ferr.Unknown, tc.wantUnknown) {
				t.Errorf("unknown = %v, want %v", ferr.Unknown, tc.wantUnknown)
			}
			if (len(tc.wantMissing) > 0) != errors.Is(err, ErrMissingField) {
				t.Errorf("errors.Is(ErrMissingField) mismatch for %v", err)
			}
			if (len(tc.wantUnknown) > 0) != errors.Is(err, ErrUnknownField) {
				t.Errorf("errors.Is(ErrUnknownField) mismatch for %v", err)
			}
		})
	}
}

func TestForm_FileName(t *testing.T) {
	will, _ := Lookup(string(WillDeed))
	tests := []struct {
		answer string
		want   string
	}{
		{"estate.pdf", "estate.pdf"},
		{"../../etc/estate.PDF", "estate.PDF"},
		{"notes.txt", "will-deed.pdf"},
		{".pdf", "will-deed.pdf"},
	}
	for _, tc := range tests {
		f := Form{Template: will, Body: map[string]any{"file_name": tc.answer}}
		if got := f.FileName(); got != tc.want {
			t.Errorf("FileName(%q) = %q, want %q", tc.answer, got, tc.want)
		}
	}
}
