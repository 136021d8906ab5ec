package nyaybodh

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	baseURL     string
	authBaseURL string
	docgenURL   string
	token       string
	httpClient  *http.Client
	timeout     time.Duration

	cacheTTL      time.Duration
	redisAddrs    []string
	redisPassword string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithBaseURL sets the search API root, e.g. "https://api.nyaybodh.in". Required.
func WithBaseURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = url
	})
}

// WithAuthBaseURL sets the account service root. Defaults to the base URL.
func WithAuthBaseURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.authBaseURL = url
	})
}

// WithDocGenURL sets the legal document generator root. Defaults to the base URL.
func WithDocGenURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.docgenURL = url
	})
}

// WithToken sends a bearer token with every request.
func WithToken(token string) Option {
	return optionFunc(func(c *clientConfig) {
		c.token = token
	})
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithTimeout sets the request timeout of the default HTTP client.
// Default: 60s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithCacheTTL sets how long search results are reused.
// Default: 30 minutes.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithRedisCache keeps search results in Redis or Valkey so several
// processes share them. The default is an in-process cache.
func WithRedisCache(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisAddrs = []string{addr}
		c.redisPassword = password
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
