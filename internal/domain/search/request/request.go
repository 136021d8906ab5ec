package request

import (
	"fmt"
	"strings"

	"github.com/nyaybodh/nyaybodh/internal/domain"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/mode"
)

// MaxQueryLength is the maximum allowed search query length.
const MaxQueryLength = 4096

// Request is a validated search query.
// The raw query is kept as typed: it is what the server receives.
type Request struct {
	query      string
	searchType mode.Type
}

// New validates search parameters. An empty type means entity search.
func New(query string, t mode.Type) (Request, error) {
	if strings.TrimSpace(query) == "" {
		return Request{}, fmt.Errorf("query is required: %w", domain.ErrInvalidQuery)
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars): %w", MaxQueryLength, domain.ErrInvalidQuery)
	}
	if t == "" {
		t = mode.Entity
	}
	if !t.IsValid() {
		return Request{}, fmt.Errorf("%q: %w", t, domain.ErrInvalidSearchType)
	}
	return Request{query: query, searchType: t}, nil
}

// Query returns the raw query text.
func (r Request) Query() string { return r.query }

// Type returns the search type.
func (r Request) Type() mode.Type { return r.searchType }

// Key returns the cache key of the request.
func (r Request) Key() string { return Key(r.searchType, r.query) }

// Key normalizes a query for caching: "entity:breach of contract".
func Key(t mode.Type, query string) string {
	return string(t) + ":" + strings.ToLower(strings.TrimSpace(query))
}
