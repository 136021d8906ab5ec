package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/nyaybodh/nyaybodh/internal/domain"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/facet"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/filter"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/mode"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/request"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/result"
)

// Status is the state of a results page after a submission.
type Status string

const (
	// StatusIdle means nothing has been submitted yet.
	StatusIdle Status = "idle"
	// StatusSuccess means the search returned hits.
	StatusSuccess Status = "success"
	// StatusEmpty means the search completed with zero hits.
	StatusEmpty Status = "empty"
	// StatusError means the request failed.
	StatusError Status = "error"
)

// User-facing messages.
const (
	MessageSearching    = "Searching..."
	MessageNoResults    = "No results found. Try adjusting your search terms."
	MessageSearchFailed = "Search failed. Please check your connection and try again."
	MessageErrorState   = "An error occurred while searching. Please try again."
	MessageEmptyState   = "No matching results found for your query."
)

// NotificationKind classifies a toast.
type NotificationKind string

// Notification kinds.
const (
	NotifyLoading NotificationKind = "loading"
	NotifySuccess NotificationKind = "success"
	NotifyInfo    NotificationKind = "info"
	NotifyError   NotificationKind = "error"
)

// Notification is a transient user-facing message.
type Notification struct {
	Kind    NotificationKind
	Message string
}

// State is a snapshot of a results page.
type State struct {
	Query     string
	Type      mode.Type
	Status    Status
	Loading   bool
	FromCache bool
	Results   result.Set
	// Message is the empty-state or error text shown instead of results.
	Message string
	Err     error
}

// HasError reports whether the last submission failed.
func (s State) HasError() bool { return s.Status == StatusError }

// View is a consistent snapshot of everything a results page renders.
type View struct {
	State     State
	Facets    facet.Options
	Selection filter.Selection
	Visible   result.Set
}

// SubmitOption tweaks a single submission.
type SubmitOption func(*submitOptions)

type submitOptions struct {
	refresh bool
}

// Refresh skips the cache lookup. The fresh result is still cached.
func Refresh() SubmitOption {
	return func(o *submitOptions) { o.refresh = true }
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records terminal states per search type.
func WithMetrics(outcomes *prometheus.CounterVec) Option {
	return func(s *Service) { s.outcomes = outcomes }
}

// Service creates result pages that share one searcher and one cache.
type Service struct {
	searcher Searcher
	cache    Cache
	notifier Notifier
	outcomes *prometheus.CounterVec
	logger   *zap.Logger
}

// New creates a search service. notifier and logger may be nil.
func New(searcher Searcher, cache Cache, notifier Notifier, logger *zap.Logger, opts ...Option) *Service {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{searcher: searcher, cache: cache, notifier: notifier, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewPage opens an empty results page with no selection.
func (s *Service) NewPage() *Page {
	return &Page{
		svc:    s,
		state:  State{Status: StatusIdle, Type: mode.Entity, Results: result.Empty(mode.Entity)},
		facets: facet.Extract(result.Empty(mode.Entity), mode.Entity),
	}
}

// Page is one results page: the latest submission's results, their facets
// and the active filter selection. Safe for concurrent use.
type Page struct {
	svc *Service

	mu        sync.Mutex
	seq       uint64
	state     State
	facets    facet.Options
	selection filter.Selection
}

// Submit runs a search and updates the page.
//
// An error is returned only for invalid input; remote failures become
// StatusError. When submissions overlap, only the most recent one updates
// the page. The returned state always describes this submission.
func (p *Page) Submit(ctx context.Context, rawQuery string, t mode.Type, opts ...SubmitOption) (State, error) {
	req, err := request.New(rawQuery, t)
	if err != nil {
		return p.State(), err
	}
	var o submitOptions
	for _, opt := range opts {
		opt(&o)
	}

	key := req.Key()

	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.selection.Reset()
	p.mu.Unlock()

	s := p.svc
	if !o.refresh {
		if data, ok := s.cache.Get(ctx, key); ok {
			st := completed(req, data, nil)
			st.FromCache = true
			if p.apply(seq, st) {
				s.notifier.Notify(Notification{
					Kind:    NotifySuccess,
					Message: fmt.Sprintf("Loaded cached results for %q", req.Query()),
				})
			}
			s.record(st)
			s.logger.Debug("search served from cache",
				zap.String("key", key),
				zap.Int("results", data.Len()),
			)
			return st, nil
		}
	}

	s.notifier.Notify(Notification{Kind: NotifyLoading, Message: MessageSearching})
	p.mu.Lock()
	if seq == p.seq {
		p.state.Loading = true
	}
	p.mu.Unlock()

	data, err := s.searcher.Search(ctx, req.Type(), req.Query())
	switch {
	case err == nil:
		s.cache.Put(ctx, key, data)
	case errors.Is(err, domain.ErrEmptyResult):
		data, err = result.Empty(req.Type()), nil
		s.cache.Put(ctx, key, data)
	default:
		data = result.Empty(req.Type())
		s.logger.Warn("search failed",
			zap.String("type", string(req.Type())),
			zap.Error(err),
		)
	}

	st := completed(req, data, err)
	if p.apply(seq, st) {
		s.notifier.Notify(outcomeNotification(st))
	} else {
		s.logger.Debug("stale search response dropped", zap.String("key", key))
	}
	s.record(st)
	return st, nil
}

func completed(req request.Request, data result.Set, err error) State {
	st := State{
		Query:   req.Query(),
		Type:    req.Type(),
		Status:  StatusSuccess,
		Results: data,
	}
	switch {
	case err != nil:
		st.Status = StatusError
		st.Message = MessageErrorState
		st.Err = err
	case data.Len() == 0:
		st.Status = StatusEmpty
		st.Message = MessageEmptyState
	}
	return st
}

// apply installs st if seq is still the latest submission.
func (p *Page) apply(seq uint64, st State) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq {
		return false
	}
	p.state = st
	p.facets = facet.Extract(st.Results, st.Type)
	return true
}

func outcomeNotification(st State) Notification {
	switch st.Status {
	case StatusError:
		return Notification{Kind: NotifyError, Message: MessageSearchFailed}
	case StatusEmpty:
		return Notification{Kind: NotifyInfo, Message: MessageNoResults}
	default:
		return Notification{
			Kind:    NotifySuccess,
			Message: fmt.Sprintf("Found %d %s search results", st.Results.Len(), st.Type),
		}
	}
}

func (s *Service) record(st State) {
	if s.outcomes == nil {
		return
	}
	s.outcomes.WithLabelValues(string(st.Type), string(st.Status)).Inc()
}

// Toggle flips a facet value in the selection and reports whether it is
// selected afterwards. Only values offered by the current facets can be added.
func (p *Page) Toggle(d filter.Dimension, value string) (bool, error) {
	if !d.IsValid() {
		return false, fmt.Errorf("dimension %q: %w", d, domain.ErrUnknownFacet)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.selection.Has(d, value) && !slices.Contains(p.facets.Get(string(d)), value) {
		return false, fmt.Errorf("%s %q: %w", d, value, domain.ErrUnknownFacet)
	}
	return p.selection.Toggle(d, value), nil
}

// SetSelection replaces the selection without checking it against the facets.
func (p *Page) SetSelection(sel filter.Selection) {
	p.mu.Lock()
	p.selection = sel
	p.mu.Unlock()
}

// ClearSelection empties every dimension.
func (p *Page) ClearSelection() {
	p.mu.Lock()
	p.selection.Reset()
	p.mu.Unlock()
}

// Selection returns the active selection.
func (p *Page) Selection() filter.Selection {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selection
}

// Facets returns the filter options of the current results.
func (p *Page) Facets() facet.Options {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.facets
}

// State returns the current page state.
func (p *Page) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Visible returns the results that pass the active selection.
func (p *Page) Visible() result.Set {
	p.mu.Lock()
	defer p.mu.Unlock()
	return filter.Apply(p.state.Results, p.selection, p.state.Results.Type())
}

// View returns state, facets, selection and visible results taken together.
func (p *Page) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return View{
		State:     p.state,
		Facets:    p.facets,
		Selection: p.selection,
		Visible:   filter.Apply(p.state.Results, p.selection, p.state.Results.Type()),
	}
}

// NoResults reports whether the page should show the "No Results Found" state.
func (v View) NoResults() bool {
	return v.State.Status != StatusIdle && !v.State.Loading && v.Visible.Len() == 0
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}
