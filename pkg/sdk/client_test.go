package nyaybodh

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	domcase "github.com/nyaybodh/nyaybodh/internal/domain/casefile"
	healthuc "github.com/nyaybodh/nyaybodh/internal/usecase/health"
)

// --- Mocks ---

type mockCaseUseCase struct {
	pdfFn       func(ctx context.Context, id string) (domcase.PDF, error)
	recommendFn func(ctx context.Context, id string) (domcase.Recommendations, error)
}

func (m *mockCaseUseCase) PDF(ctx context.Context, id string) (domcase.PDF, error) {
	return m.pdfFn(ctx, id)
}

func (m *mockCaseUseCase) Recommend(ctx context.Context, id string) (domcase.Recommendations, error) {
	return m.recommendFn(ctx, id)
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

func searchServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/entity" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"uuid": "u1", "petitioner": "Ram", "respondent": "Shyam", "summary": "Judge: Verma. 2020."},
			{"uuid": "u2", "petitioner": "Sita", "respondent": "State", "summary": "Judge: Rao. 2018."},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// --- Tests ---

func TestNew_NoBaseURL(t *testing.T) {
	_, err := New(context.Background())
	if err == nil {
		t.Fatal("expected error when no base url provided")
	}
}

func TestOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hc := &http.Client{}

	cfg := &clientConfig{}
	for _, o := range []Option{
		WithBaseURL("http://api"),
		WithAuthBaseURL("http://auth"),
		WithToken("tok"),
		WithHTTPClient(hc),
		WithTimeout(5 * time.Second),
		WithCacheTTL(time.Minute),
		WithRedisCache("localhost:6379", "pw"),
		WithLogger(logger),
		WithPrometheus(reg),
	} {
		o.apply(cfg)
	}

	if cfg.baseURL != "http://api" || cfg.authBaseURL != "http://auth" || cfg.token != "tok" {
		t.Errorf("urls/token not applied: %+v", cfg)
	}
	if cfg.httpClient != hc || cfg.timeout != 5*time.Second || cfg.cacheTTL != time.Minute {
		t.Errorf("transport options not applied: %+v", cfg)
	}
	if len(cfg.redisAddrs) != 1 || cfg.redisAddrs[0] != "localhost:6379" || cfg.redisPassword != "pw" {
		t.Errorf("redis options not applied: %+v", cfg)
	}
	if cfg.logger != logger || cfg.metricsReg != reg {
		t.Error("observability options not applied")
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{ErrInvalidQuery, "invalid"},
		{ErrInvalidSearchType, "invalid"},
		{ErrUnknownFacet, "invalid"},
		{ErrUnknownKind, "invalid"},
		{&FieldError{Missing: []string{"party1_name"}}, "invalid"},
		{ErrNotFound, "not_found"},
		{ErrUnauthorized, "unauthorized"},
		{ErrNetwork, "error"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		if got := statusOf(tt.err); got != tt.want {
			t.Errorf("statusOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestObserver_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	obs.observe("search", time.Now(), nil)
	obs.observe("search", time.Now(), ErrNetwork)
	obs.observe("case.pdf", time.Now(), ErrNotFound)

	if got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("search", "ok")); got != 1 {
		t.Errorf("search ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("search", "error")); got != 1 {
		t.Errorf("search error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("case.pdf", "not_found")); got != 1 {
		t.Errorf("case.pdf not_found = %v, want 1", got)
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	first.observe("search", time.Now(), nil)
	second.observe("search", time.Now(), nil)

	if got := testutil.ToFloat64(first.metrics.operations.WithLabelValues("search", "ok")); got != 2 {
		t.Errorf("shared counter = %v, want 2", got)
	}
}

func TestObserver_Nil(t *testing.T) {
	var obs *observer
	obs.observe("search", time.Now(), nil)

	obs, err := newObserver(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	obs.observe("search", time.Now(), errors.New("boom"))
}

func TestSearch_EndToEnd(t *testing.T) {
	var calls atomic.Int32
	srv := searchServer(t, &calls)
	reg := prometheus.NewRegistry()

	c, err := New(context.Background(), WithBaseURL(srv.URL), WithToken("tok"), WithPrometheus(reg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	page, err := c.Search(ctx, Entity, "land dispute")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Status() != StatusSuccess || page.Results().Len() != 2 || page.FromCache() {
		t.Fatalf("status=%q len=%d cached=%v", page.Status(), page.Results().Len(), page.FromCache())
	}
	if page.Query() != "land dispute" || page.Type() != Entity {
		t.Errorf("query=%q type=%q", page.Query(), page.Type())
	}

	judges := page.Facets().Judges
	if len(judges) != 2 || judges[0] != "Verma" {
		t.Fatalf("judges = %v", judges)
	}
	on, err := page.Toggle(DimensionJudge, "Verma")
	if err != nil || !on {
		t.Fatalf("Toggle = %v, %v", on, err)
	}
	if ids := page.Visible().UUIDs(); len(ids) != 1 || ids[0] != "u1" {
		t.Errorf("visible = %v", ids)
	}
	if sel := page.Selected(DimensionJudge); len(sel) != 1 || sel[0] != "Verma" {
		t.Errorf("selected = %v", sel)
	}
	if _, err := page.Toggle(DimensionJudge, "Nobody"); !errors.Is(err, ErrUnknownFacet) {
		t.Errorf("unknown facet err = %v", err)
	}
	page.ClearFilters()
	if page.Visible().Len() != 2 {
		t.Errorf("visible after clear = %d", page.Visible().Len())
	}

	again, err := c.Search(ctx, Entity, "Land Dispute ")
	if err != nil {
		t.Fatal(err)
	}
	if !again.FromCache() || calls.Load() != 1 {
		t.Errorf("repeat should hit cache: cached=%v calls=%d", again.FromCache(), calls.Load())
	}

	if err := again.Submit(ctx, Entity, "land dispute", WithRefresh()); err != nil {
		t.Fatal(err)
	}
	if again.FromCache() || calls.Load() != 2 {
		t.Errorf("refresh should bypass cache: cached=%v calls=%d", again.FromCache(), calls.Load())
	}

	n, err := c.ClearCache(ctx)
	if err != nil || n != 1 {
		t.Errorf("ClearCache = %d, %v", n, err)
	}

	if got := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("search", "ok")); got != 3 {
		t.Errorf("search ok = %v, want 3", got)
	}
}

func TestSearch_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"detail":"boom"}`)
	}))
	defer srv.Close()

	c, err := New(context.Background(), WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	page, err := c.Search(context.Background(), Semantic, "bail")
	if !errors.Is(err, ErrNetwork) || page != nil {
		t.Errorf("upstream failure: page=%v err=%v", page, err)
	}

	if _, err := c.Search(context.Background(), Entity, "   "); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("blank query err = %v", err)
	}
}

func TestCaseService(t *testing.T) {
	obs, _ := newObserver(nil, nil)
	mock := &mockCaseUseCase{
		pdfFn: func(_ context.Context, id string) (domcase.PDF, error) {
			if id != "c1" {
				return domcase.PDF{}, ErrNotFound
			}
			return domcase.PDF{UUID: id, Data: []byte("%PDF-1.4")}, nil
		},
		recommendFn: func(_ context.Context, id string) (domcase.Recommendations, error) {
			return domcase.Recommendations{}, nil
		},
	}
	cases := (&Client{caseSvc: mock, obs: obs}).Cases()

	data, err := cases.PDF(context.Background(), "c1")
	if err != nil || string(data) != "%PDF-1.4" {
		t.Errorf("PDF = %q, %v", data, err)
	}
	if _, err := cases.PDF(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing PDF err = %v", err)
	}
	if _, err := cases.Recommend(context.Background(), "c1"); err != nil {
		t.Errorf("Recommend: %v", err)
	}
}

func TestHealth(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := &Client{healthSvc: &mockHealth{report: healthuc.Report{
		Status:      healthuc.Degraded,
		Checks:      map[string]healthuc.CheckResult{"api": healthuc.CheckOK, "cache": healthuc.CheckError},
		CacheDriver: healthuc.DriverRedis,
		CheckedAt:   at,
	}}}

	h := c.Health(context.Background())
	if h.Status != "degraded" || h.Checks["api"] != "ok" || h.Checks["cache"] != "error" {
		t.Errorf("health = %+v", h)
	}
	if h.CacheDriver != "redis" || !h.SharedCache() || !h.CheckedAt.Equal(at) {
		t.Errorf("cache driver = %q, checked at = %v", h.CacheDriver, h.CheckedAt)
	}
	if !h.OK() {
		t.Error("a degraded cache must still report OK")
	}
}

func TestHealth_MemoryCacheAPIDown(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatal(err)
	}
	c := &Client{obs: obs, healthSvc: &mockHealth{report: healthuc.Report{
		Status:      healthuc.Unhealthy,
		Checks:      map[string]healthuc.CheckResult{"api": healthuc.CheckError},
		CacheDriver: healthuc.DriverMemory,
	}}}

	h := c.Health(context.Background())
	if h.OK() || h.SharedCache() {
		t.Errorf("health = %+v", h)
	}
	if got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("health", "error")); got != 1 {
		t.Errorf("health error count = %v", got)
	}
}

func TestClose_NoStore(t *testing.T) {
	c := &Client{}
	c.Close()
}

func TestDocuments_EndToEnd(t *testing.T) {
	var body map[string]any
	docs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate-pow-pdf" || r.Method != http.MethodPost {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("decode %s: %v", raw, err)
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = io.WriteString(w, "%PDF-1.7 pow")
	}))
	defer docs.Close()

	reg := prometheus.NewRegistry()
	c, err := New(context.Background(), WithBaseURL("http://127.0.0.1:1"), WithDocGenURL(docs.URL), WithPrometheus(reg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	answers := map[string]string{
		"principal_name": "Asha Rao", "principal_age": "52", "principal_address": "7 Hill Road, Mumbai",
		"attorney_name": "Vikram Rao", "attorney_age": "49", "attorney_address": "7 Hill Road, Mumbai",
		"powers_granted": "Manage bank accounts", "duration": "2 years",
		"witness_1_name": "Neha Shah", "witness_2_name": "Imran Khan",
	}
	doc, err := c.Documents().Generate(context.Background(), "power-of-attorney", answers)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if doc.FileName != "power-of-attorney.pdf" || string(doc.Data) != "%PDF-1.7 pow" {
		t.Errorf("doc = %s %q", doc.FileName, doc.Data)
	}
	if body["powers_granted"] != "Manage bank accounts" {
		t.Errorf("body = %v", body)
	}
	if got := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("docgen.generate", "ok")); got != 1 {
		t.Errorf("docgen success count = %v", got)
	}
	if n := len(c.Documents().Templates()); n != 8 {
		t.Errorf("templates = %d", n)
	}
}

func TestDocuments_Errors(t *testing.T) {
	c, err := New(context.Background(), WithBaseURL("http://127.0.0.1:1"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()
	docs := c.Documents()

	if _, err := docs.Generate(context.Background(), "affidavit", nil); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	_, err = docs.Generate(context.Background(), "nda", map[string]string{"party1_name": "A", "extra": "x"})
	var ferr *FieldError
	if !errors.As(err, &ferr) || !errors.Is(err, ErrMissingField) || !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected field error, got %v", err)
	}
	if len(ferr.Unknown) != 1 || ferr.Unknown[0] != "extra" {
		t.Errorf("unknown = %v", ferr.Unknown)
	}
}
