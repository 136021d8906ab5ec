package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/nyaybodh/nyaybodh/internal/domain/search/filter"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/mode"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/result"
	"github.com/nyaybodh/nyaybodh/internal/repository/searchcache"
	searchuc "github.com/nyaybodh/nyaybodh/internal/usecase/search"
)

type stubSearcher struct {
	calls []string
}

func (s *stubSearcher) Search(_ context.Context, t mode.Type, query string) (result.Set, error) {
	s.calls = append(s.calls, string(t)+":"+query)
	if t == mode.Semantic {
		return result.NewSemanticSet([]result.Semantic{{
			UUID: "s1", Metadata: result.Metadata{result.Judge: "Verma", result.Date: "2019-01-01"},
		}}), nil
	}
	return result.NewEntitySet([]result.Entity{
		{UUID: "u1", Petitioner: "Ram", Summary: "Judge: Verma. 2020."},
		{UUID: "u2", Petitioner: "Sita", Summary: "Judge: Rao. 2018."},
	}), nil
}

func newTestPage() (*searchuc.Page, *stubSearcher) {
	s := &stubSearcher{}
	return searchuc.New(s, searchcache.New(nil), nil, nil).NewPage(), s
}

func TestInteractive_Session(t *testing.T) {
	page, s := newTestPage()
	in := strings.NewReader(strings.Join([]string{
		"land dispute",
		":judge Verma",
		"Land Dispute ",
		":refresh",
		":type semantic",
		"bail",
		":quit",
		"never reached",
	}, "\n"))
	var out bytes.Buffer

	if err := runInteractive(context.Background(), page, mode.Entity, in, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"entity:land dispute", "entity:Land Dispute", "semantic:bail"}
	if strings.Join(s.calls, "|") != strings.Join(want, "|") {
		t.Errorf("calls = %q, want %q", s.calls, want)
	}
	if !strings.Contains(out.String(), "(cached)") {
		t.Error("repeated query should be served from cache")
	}
	if page.State().Type != mode.Semantic {
		t.Errorf("type = %q", page.State().Type)
	}
}

func TestInteractive_ToggleFilters(t *testing.T) {
	page, _ := newTestPage()
	r := &repl{page: page, typ: mode.Entity, out: &bytes.Buffer{}}
	ctx := context.Background()

	if err := r.handle(ctx, "contract"); err != nil {
		t.Fatal(err)
	}
	if err := r.handle(ctx, ":judge Verma"); err != nil {
		t.Fatal(err)
	}
	if ids := page.Visible().UUIDs(); len(ids) != 1 || ids[0] != "u1" {
		t.Fatalf("visible = %v", ids)
	}
	if err := r.handle(ctx, ":year 2018"); err != nil {
		t.Fatal(err)
	}
	if page.Visible().Len() != 0 {
		t.Errorf("judge Verma AND year 2018 should match nothing, got %v", page.Visible().UUIDs())
	}
	if err := r.handle(ctx, ":clear"); err != nil {
		t.Fatal(err)
	}
	if !page.Selection().IsEmpty() || page.Visible().Len() != 2 {
		t.Errorf("clear should drop all filters")
	}
}

func TestInteractive_Errors(t *testing.T) {
	page, _ := newTestPage()
	r := &repl{page: page, typ: mode.Entity, out: &bytes.Buffer{}}
	ctx := context.Background()

	for _, line := range []string{":refresh", ":judge", ":judge Nobody", ":type keyword", ":bogus"} {
		if err := r.handle(ctx, line); err == nil {
			t.Errorf("%q: expected error", line)
		}
	}
	if err := r.handle(ctx, "   "); err != nil {
		t.Errorf("blank line: %v", err)
	}
}

func TestWriteSearchJSON(t *testing.T) {
	page, _ := newTestPage()
	if _, err := page.Submit(context.Background(), "q", mode.Entity); err != nil {
		t.Fatal(err)
	}
	page.SetSelection(filter.NewSelection([]string{"2020"}, nil, nil))

	var buf bytes.Buffer
	if err := writeSearchJSON(&buf, page.View()); err != nil {
		t.Fatal(err)
	}
	var got struct {
		Status  string     `json:"status"`
		Visible result.Set `json:"visible"`
		Error   string     `json:"error"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Status != "success" || got.Visible.Len() != 1 || got.Error != "" {
		t.Errorf("got %+v", got)
	}
}

func TestRootCommand_Commands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCommand().Commands {
		names[c.Name] = true
	}
	for _, want := range []string{"search", "case", "generate", "ask", "chat", "upload", "auth", "admin", "cache", "serve", "version"} {
		if !names[want] {
			t.Errorf("missing command %q", want)
		}
	}
}
