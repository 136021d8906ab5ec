package nyaybodh

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nyaybodh/nyaybodh/internal/domain/search/facet"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/filter"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/mode"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/result"
	searchuc "github.com/nyaybodh/nyaybodh/internal/usecase/search"
)

// SearchType selects the search strategy.
type SearchType = mode.Type

// Search types.
const (
	Entity   = mode.Entity
	Semantic = mode.Semantic
)

// Dimension is a filterable facet.
type Dimension = filter.Dimension

// Filter dimensions.
const (
	DimensionDate  = filter.Date
	DimensionParty = filter.Party
	DimensionJudge = filter.Judge
)

// Status is the outcome of the latest search on a page.
type Status = searchuc.Status

// Search outcomes.
const (
	StatusSuccess = searchuc.StatusSuccess
	StatusEmpty   = searchuc.StatusEmpty
	StatusError   = searchuc.StatusError
)

type (
	// ResultSet holds either entity or semantic results.
	ResultSet = result.Set
	// EntityResult is one entity search hit.
	EntityResult = result.Entity
	// SemanticResult is one semantic search hit with its metadata.
	SemanticResult = result.Semantic
	// Facets are the filter values available for a result set.
	Facets = facet.Options
)

// SearchOption tunes a single search.
type SearchOption func(*searchOptions)

type searchOptions struct {
	refresh bool
}

// WithRefresh skips the cache lookup; the fresh result is still cached.
func WithRefresh() SearchOption {
	return func(o *searchOptions) { o.refresh = true }
}

// Search runs a query on a new Page.
// Zero matches is not an error: the page reports StatusEmpty.
func (c *Client) Search(ctx context.Context, t SearchType, query string, opts ...SearchOption) (*Page, error) {
	p := &Page{page: c.searchSvc.NewPage(), obs: c.obs}
	if err := p.Submit(ctx, t, query, opts...); err != nil {
		return nil, err
	}
	return p, nil
}

// Page is a result set with its facets and the active filter selection.
// Safe for concurrent use.
type Page struct {
	page *searchuc.Page
	obs  *observer
}

// Submit runs another query on this page. The filter selection is reset.
func (p *Page) Submit(ctx context.Context, t SearchType, query string, opts ...SearchOption) (err error) {
	var o searchOptions
	for _, opt := range opts {
		opt(&o)
	}
	var submit []searchuc.SubmitOption
	if o.refresh {
		submit = append(submit, searchuc.Refresh())
	}

	start := time.Now()
	var st searchuc.State
	defer func() {
		p.obs.observe("search", start, err,
			slog.String("type", string(t)),
			slog.Bool("from_cache", st.FromCache),
			slog.Int("results", st.Results.Len()),
		)
	}()

	st, err = p.page.Submit(ctx, query, t, submit...)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if st.HasError() {
		return fmt.Errorf("search: %w", st.Err)
	}
	return nil
}

// Query returns the submitted query.
func (p *Page) Query() string { return p.page.State().Query }

// Type returns the search type of the current results.
func (p *Page) Type() SearchType { return p.page.State().Type }

// Status returns the outcome of the latest search.
func (p *Page) Status() Status { return p.page.State().Status }

// FromCache reports whether the results were served from the cache.
func (p *Page) FromCache() bool { return p.page.State().FromCache }

// Results returns the unfiltered result set.
func (p *Page) Results() ResultSet { return p.page.State().Results }

// Facets returns the filter values derived from the results.
func (p *Page) Facets() Facets { return p.page.Facets() }

// Visible returns the results that pass the active selection, in original order.
func (p *Page) Visible() ResultSet { return p.page.Visible() }

// Toggle adds value to or removes it from the selection of dimension d.
// It reports whether the value is selected afterwards.
func (p *Page) Toggle(d Dimension, value string) (bool, error) {
	return p.page.Toggle(d, value) //nolint:wrapcheck // sentinel is part of the API
}

// Selected returns the selected values of dimension d.
func (p *Page) Selected(d Dimension) []string {
	return p.page.Selection().Values(d)
}

// ClearFilters empties the selection.
func (p *Page) ClearFilters() { p.page.ClearSelection() }
