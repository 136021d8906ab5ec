package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the nyaybodh client, gateway and CLI configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Cache   CacheConfig   `yaml:"cache"`
	HTTP    HTTPConfig    `yaml:"http"`
	Auth    AuthConfig    `yaml:"auth"`
	Session SessionConfig `yaml:"session"`
	Storage StorageConfig `yaml:"storage"`
	DocGen  DocGenConfig  `yaml:"docgen"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig points at the remote NyayBodh API.
type APIConfig struct {
	BaseURL     string `yaml:"base_url"`
	AuthBaseURL string `yaml:"auth_base_url"` // default: base_url
	TimeoutSec  int    `yaml:"timeout_sec"`
}

// DocGenConfig points at the legal document generator.
type DocGenConfig struct {
	BaseURL string `yaml:"base_url"` // default: api.base_url
	// Endpoints overrides template routes by kind, e.g. {"flat-sale-deed": "/generate_flat_sale_deed_pdf"}.
	Endpoints map[string]string `yaml:"endpoints"`
}

// CacheConfig holds search results cache settings.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // memory (default), redis, valkey
	TTLSec           int      `yaml:"ttl_sec"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Shared reports whether results are kept in an external store.
func (c CacheConfig) Shared() bool {
	return c.Driver == "redis" || c.Driver == "valkey"
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds gateway authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
	// PublicPaths are served without a key. Unset keeps /health and /metrics open.
	PublicPaths []string `yaml:"public_paths"`
}

// HTTPConfig holds gateway HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// SessionConfig locates the stored login session.
type SessionConfig struct {
	Path string `yaml:"path"` // default: $XDG_CONFIG_HOME/nyaybodh/session.json
}

// StorageConfig holds settings for saving downloaded case files.
type StorageConfig struct {
	Type         string `yaml:"type"` // "" (disabled), local, s3
	LocalPath    string `yaml:"local_path"`
	S3Bucket     string `yaml:"s3_bucket"`
	S3Region     string `yaml:"s3_region"`
	AWSAccessKey string `yaml:"aws_access_key_id"`
	AWSSecretKey string `yaml:"aws_secret_access_key"`
}

// defaultYAML is used when no config file exists for the environment.
const defaultYAML = `
api:
  base_url: ${NYAYBODH_API_URL:-http://localhost:8000}
  auth_base_url: ${NYAYBODH_AUTH_URL}
cache:
  driver: ${NYAYBODH_CACHE_DRIVER:-memory}
http:
  port: ${NYAYBODH_PORT:-8080}
docgen:
  base_url: ${NYAYBODH_DOCGEN_URL}
storage:
  type: ${STORAGE_TYPE}
  local_path: ${STORAGE_LOCAL_PATH:-./storage/cases}
  s3_bucket: ${AWS_S3_BUCKET}
  s3_region: ${AWS_REGION}
logging:
  level: ${LOG_LEVEL}
`

// Load reads configuration by environment name (local, dev, prod).
// Without a config/<env>.yaml file the built-in defaults are used.
func Load(env string) (Config, error) {
	path := findConfigPath(env)
	data, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, fs.ErrNotExist) {
		return Parse([]byte(defaultYAML))
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse expands env variables in a YAML document, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads variables from a .env file without overriding the environment.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.AuthBaseURL == "" {
		c.API.AuthBaseURL = c.API.BaseURL
	}
	c.DocGen.BaseURL = strings.TrimRight(c.DocGen.BaseURL, "/")
	if c.DocGen.BaseURL == "" {
		c.DocGen.BaseURL = c.API.BaseURL
	}
	if c.API.TimeoutSec <= 0 {
		c.API.TimeoutSec = 60
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "memory"
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 1800
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "nyaybodh:search:"
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 90
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Storage.Type == "local" && c.Storage.LocalPath == "" {
		c.Storage.LocalPath = "./storage/cases"
	}
	if c.Storage.Type == "s3" && c.Storage.S3Region == "" {
		c.Storage.S3Region = "us-east-1"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	for name, raw := range map[string]string{
		"api.base_url":      c.API.BaseURL,
		"api.auth_base_url": c.API.AuthBaseURL,
		"docgen.base_url":   c.DocGen.BaseURL,
	} {
		u, err := url.Parse(raw)
		if raw == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s must be an absolute http(s) url, got %q", name, raw)
		}
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Cache.Driver {
	case "memory":
	case "redis", "valkey":
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for driver %q", c.Cache.Driver)
		}
	default:
		return fmt.Errorf("cache.driver must be \"memory\", \"redis\" or \"valkey\", got %q", c.Cache.Driver)
	}
	switch c.Storage.Type {
	case "", "local":
	case "s3":
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("storage.s3_bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("storage.type must be \"local\" or \"s3\", got %q", c.Storage.Type)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
