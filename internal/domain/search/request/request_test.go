package request

import (
	"errors"
	"strings"
	"testing"

	"github.com/nyaybodh/nyaybodh/internal/domain"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/mode"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New("  Land Dispute ", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Query() != "  Land Dispute " {
		t.Errorf("Query() = %q, raw query must be kept", r.Query())
	}
	if r.Type() != mode.Entity {
		t.Errorf("Type() = %q, want entity (default)", r.Type())
	}
	if r.Key() != "entity:land dispute" {
		t.Errorf("Key() = %q", r.Key())
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name  string
		query string
		typ   mode.Type
		want  error
	}{
		{"empty", "", mode.Entity, domain.ErrInvalidQuery},
		{"blank", "   \t", mode.Semantic, domain.ErrInvalidQuery},
		{"too long", strings.Repeat("a", MaxQueryLength+1), mode.Entity, domain.ErrInvalidQuery},
		{"bad type", "q", mode.Type("hybrid"), domain.ErrInvalidSearchType},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.query, tc.typ)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestKey_Normalization(t *testing.T) {
	if Key(mode.Entity, "  Breach Of Contract  ") != Key(mode.Entity, "breach of contract") {
		t.Error("keys must ignore case and surrounding space")
	}
	if Key(mode.Entity, "x") == Key(mode.Semantic, "x") {
		t.Error("keys must differ by type")
	}
}
