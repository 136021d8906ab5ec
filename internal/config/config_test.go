package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("api:\n  base_url: https://api.nyaybodh.in/\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.BaseURL != "https://api.nyaybodh.in" {
		t.Errorf("base_url = %q, trailing slash should be trimmed", cfg.API.BaseURL)
	}
	if cfg.API.AuthBaseURL != cfg.API.BaseURL {
		t.Errorf("auth_base_url = %q, want base_url", cfg.API.AuthBaseURL)
	}
	if cfg.Cache.Driver != "memory" || cfg.Cache.TTLSec != 1800 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Cache.Shared() {
		t.Error("memory cache is not shared")
	}
	if cfg.HTTP.Port != 8080 || cfg.API.TimeoutSec != 60 {
		t.Errorf("port=%d timeout=%d", cfg.HTTP.Port, cfg.API.TimeoutSec)
	}
	if cfg.DocGen.BaseURL != cfg.API.BaseURL {
		t.Errorf("docgen.base_url = %q, want base_url", cfg.DocGen.BaseURL)
	}
}

func TestParse_DocGen(t *testing.T) {
	t.Setenv("NYAYBODH_DOCGEN_URL", "https://docs.example.org/")
	doc := `
api:
  base_url: https://api.example.org
docgen:
  base_url: ${NYAYBODH_DOCGEN_URL}
  endpoints:
    flat-sale-deed: /generate_flat_sale_deed_pdf
`
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DocGen.BaseURL != "https://docs.example.org" {
		t.Errorf("docgen.base_url = %q", cfg.DocGen.BaseURL)
	}
	if cfg.DocGen.Endpoints["flat-sale-deed"] != "/generate_flat_sale_deed_pdf" {
		t.Errorf("endpoints = %v", cfg.DocGen.Endpoints)
	}
}

func TestParse_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_NYAYBODH_URL", "http://search.internal:9000")
	doc := `
api:
  base_url: ${TEST_NYAYBODH_URL}
cache:
  driver: ${TEST_UNSET_DRIVER:-redis}
  addrs: ["localhost:6379"]
`
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.BaseURL != "http://search.internal:9000" {
		t.Errorf("base_url = %q", cfg.API.BaseURL)
	}
	if cfg.Cache.Driver != "redis" || !cfg.Cache.Shared() {
		t.Errorf("driver = %q", cfg.Cache.Driver)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		c := Config{API: APIConfig{BaseURL: "http://localhost:8000"}}
		c.ApplyDefaults()
		return c
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"missing base url", func(c *Config) { c.API.BaseURL = "" }, "api.base_url"},
		{"relative base url", func(c *Config) { c.API.BaseURL = "/api" }, "api.base_url"},
		{"relative docgen url", func(c *Config) { c.DocGen.BaseURL = "docs" }, "docgen.base_url"},
		{"bad port", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"bad driver", func(c *Config) { c.Cache.Driver = "memcached" }, "cache.driver"},
		{"redis without addrs", func(c *Config) { c.Cache.Driver = "redis" }, "cache.addrs"},
		{"bad storage", func(c *Config) { c.Storage.Type = "ftp" }, "storage.type"},
		{"s3 without bucket", func(c *Config) { c.Storage.Type = "s3" }, "storage.s3_bucket"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := base()
			tc.mutate(&c)
			err := c.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.errMsg) {
				t.Errorf("error %q should mention %q", err, tc.errMsg)
			}
		})
	}

	c := base()
	if err := c.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestLoad_FallsBackToDefaults(t *testing.T) {
	t.Setenv("NYAYBODH_API_URL", "https://example.org")
	cfg, err := Load("no-such-env")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.BaseURL != "https://example.org" {
		t.Errorf("base_url = %q", cfg.API.BaseURL)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	doc := "api:\n  base_url: http://localhost:8000\nstorage:\n  type: local\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.LocalPath != "./storage/cases" {
		t.Errorf("local_path = %q", cfg.Storage.LocalPath)
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit file")
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("TEST_DOTENV_VALUE=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TEST_DOTENV_VALUE", "")
	os.Unsetenv("TEST_DOTENV_VALUE")

	if err := LoadDotEnv(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("TEST_DOTENV_VALUE"); got != "from-file" {
		t.Errorf("got %q", got)
	}
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}
