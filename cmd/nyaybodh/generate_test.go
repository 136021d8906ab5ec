package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCollectAnswers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "will.yaml")
	doc := `
testator_name: Meera Iyer
testator_age: 71
executors:
  - name: Arjun Iyer
    age: 44
  - name: Kavya Iyer
land_details:
  boundaries:
    north: Temple road
sale_date: 2024-01-05
pin: 0411
witness_2: ~
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := collectAnswers(path, []string{"testator_age=72", "address=12 MG Road, Pune", "note="})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"testator_name":                 "Meera Iyer",
		"testator_age":                  "72",
		"executors.0.name":              "Arjun Iyer",
		"executors.0.age":               "44",
		"executors.1.name":              "Kavya Iyer",
		"land_details.boundaries.north": "Temple road",
		"sale_date":                     "2024-01-05",
		"address":                       "12 MG Road, Pune",
		"note":                          "",
		"pin":                           "0411",
		"witness_2":                     "",
	}
	if len(got) != len(want) {
		t.Errorf("got %d answers: %v", len(got), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestCollectAnswers_Errors(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "list.yaml")
	if err := os.WriteFile(list, []byte("- a\n- b\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		from   string
		fields []string
		errMsg string
	}{
		{"no equals", "", []string{"party1_name"}, "expected key=value"},
		{"empty key", "", []string{" =x"}, "expected key=value"},
		{"missing file", filepath.Join(dir, "nope.yaml"), nil, "reading"},
		{"top level list", list, nil, "top level must be a mapping"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := collectAnswers(tc.from, tc.fields)
			if err == nil || !strings.Contains(err.Error(), tc.errMsg) {
				t.Errorf("expected error mentioning %q, got %v", tc.errMsg, err)
			}
		})
	}
}

func TestGenerateCommand_WritesPDF(t *testing.T) {
	var got map[string]string
	docs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate_employee_nda_pdf" {
			t.Errorf("path = %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode %s: %v", body, err)
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = io.WriteString(w, "%PDF-1.4 nda")
	}))
	defer docs.Close()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := "api:\n  base_url: http://127.0.0.1:1\n" +
		"docgen:\n  base_url: " + docs.URL + "\n" +
		"session:\n  path: " + filepath.Join(dir, "session.json") + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "nda.pdf")

	args := []string{
		"nyaybodh", "--config", cfgPath, "--env-file", filepath.Join(dir, "missing.env"),
		"generate",
		"--field", "company_name=Acme Legal LLP",
		"--field", "company_address=12 MG Road, Pune",
		"-f", "employee_name=Ravi Kumar",
		"-f", "employee_address=4 Park Street, Kolkata",
		"-f", "high_court_city=Bombay",
		"-o", out,
		"employee-nda",
	}
	if err := rootCommand().Run(context.Background(), args); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil || string(data) != "%PDF-1.4 nda" {
		t.Fatalf("output = %q, %v", data, err)
	}
	if got["company_address"] != "12 MG Road, Pune" || got["high_court_city"] != "Bombay" {
		t.Errorf("request body = %v", got)
	}
}

func TestGenerateCommand_InvalidAnswers(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := "api:\n  base_url: http://127.0.0.1:1\nsession:\n  path: " + filepath.Join(dir, "session.json") + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}

	args := []string{
		"nyaybodh", "--config", cfgPath, "--env-file", filepath.Join(dir, "missing.env"),
		"generate", "-f", "company_name=Acme", "employee-nda",
	}
	err := rootCommand().Run(context.Background(), args)
	if err == nil || !strings.Contains(err.Error(), "missing company_address") {
		t.Errorf("expected missing fields error, got %v", err)
	}
}
