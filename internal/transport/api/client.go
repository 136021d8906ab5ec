// Package api is the HTTP client for the remote NyayBodh case API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nyaybodh/nyaybodh/internal/domain"
	"github.com/nyaybodh/nyaybodh/internal/metrics"
	"github.com/nyaybodh/nyaybodh/internal/version"
)

const (
	defaultTimeout = 60 * time.Second
	maxErrorBody   = 64 << 10

	// DefaultMaxPDFBytes caps downloaded and generated PDFs.
	DefaultMaxPDFBytes = 100 << 20
	// DefaultMaxSearchBytes caps a search payload.
	DefaultMaxSearchBytes = 32 << 20
)

// TokenSource supplies the bearer token of the current session, "" when logged out.
type TokenSource interface {
	Token() string
}

// Config holds the remote API settings.
type Config struct {
	BaseURL     string
	AuthBaseURL string // defaults to BaseURL
	// DocGenBaseURL serves the generate-*-pdf endpoints. Defaults to BaseURL.
	DocGenBaseURL string
	Timeout       time.Duration
	// Zero selects DefaultMaxPDFBytes and DefaultMaxSearchBytes.
	MaxPDFBytes    int64
	MaxSearchBytes int64
	HTTPClient     *http.Client
	Tokens         TokenSource
	// OnUnauthorized runs after any 401 response, typically to clear the local session.
	OnUnauthorized func()
	Logger         *zap.Logger
}

// Client calls the remote API.
type Client struct {
	baseURL        string
	authBaseURL    string
	docgenBaseURL  string
	maxPDF         int64
	maxSearch      int64
	http           *http.Client
	tokens         TokenSource
	onUnauthorized func()
	logger         *zap.Logger
}

// New creates an API client.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	authBase := strings.TrimRight(cfg.AuthBaseURL, "/")
	if authBase == "" {
		authBase = base
	}
	docgenBase := strings.TrimRight(cfg.DocGenBaseURL, "/")
	if docgenBase == "" {
		docgenBase = base
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:        base,
		authBaseURL:    authBase,
		docgenBaseURL:  docgenBase,
		maxPDF:         orDefault(cfg.MaxPDFBytes, DefaultMaxPDFBytes),
		maxSearch:      orDefault(cfg.MaxSearchBytes, DefaultMaxSearchBytes),
		http:           hc,
		tokens:         cfg.Tokens,
		onUnauthorized: cfg.OnUnauthorized,
		logger:         logger,
	}, nil
}

func orDefault(n, def int64) int64 {
	if n > 0 {
		return n
	}
	return def
}

// readLimited reads at most limit bytes of r. A longer body is reported
// through the second result instead of being cut short silently.
func readLimited(r io.Reader, limit int64) ([]byte, bool, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(data)) > limit {
		return nil, true, nil
	}
	return data, false, nil
}

// BaseURL returns the search API root.
func (c *Client) BaseURL() string { return c.baseURL }

// request describes one outbound call.
type request struct {
	endpoint    string // metrics label
	method      string
	url         string
	body        io.Reader
	contentType string
	accept      string
	cookies     []*http.Cookie
}

func jsonRequest(endpoint, method, url string, in any) (*request, error) {
	r := &request{endpoint: endpoint, method: method, url: url, accept: "application/json"}
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", endpoint, err)
		}
		r.body = bytes.NewReader(data)
		r.contentType = "application/json"
	}
	return r, nil
}

// send executes r. The caller owns the response body.
// Only transport failures are returned as errors; status codes are left to the caller.
func (c *Client) send(ctx context.Context, r *request) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, r.method, r.url, r.body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", r.endpoint, err)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.accept != "" {
		req.Header.Set("Accept", r.accept)
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("User-Agent", version.UserAgent())
	for _, ck := range r.cookies {
		req.AddCookie(ck)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues(r.endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(r.endpoint, "error").Inc()
		c.logger.Debug("Upstream request failed",
			zap.String("endpoint", r.endpoint),
			zap.String("request_id", reqID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %s %s: %w", domain.ErrNetwork, r.method, r.endpoint, err)
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(r.endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	c.logger.Debug("Upstream request",
		zap.String("endpoint", r.endpoint),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}
	return resp, nil
}

// do sends r and decodes a 2xx JSON body into out (skipped when out is nil).
func (c *Client) do(ctx context.Context, r *request, out any) error {
	resp, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if !isSuccess(resp.StatusCode) {
		return errorFromResponse(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w: %w", r.endpoint, domain.ErrMalformedResponse, err)
	}
	return nil
}

// stream sends r and copies a 2xx body to w as it arrives.
func (c *Client) stream(ctx context.Context, r *request, w io.Writer) (int64, error) {
	resp, err := c.send(ctx, r)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if !isSuccess(resp.StatusCode) {
		return 0, errorFromResponse(resp)
	}

	var dst io.Writer = w
	if f, ok := w.(http.Flusher); ok {
		dst = flushWriter{w: w, f: f}
	}
	n, err := io.Copy(dst, resp.Body)
	if err != nil {
		return n, fmt.Errorf("%w: read %s stream: %w", domain.ErrNetwork, r.endpoint, err)
	}
	return n, nil
}

type flushWriter struct {
	w io.Writer
	f http.Flusher
}

func (fw flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	fw.f.Flush()
	return n, err //nolint:wrapcheck // passthrough writer
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// errorFromResponse reads the body of a non-2xx response into a *domain.APIError.
func errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return domain.NewAPIError(resp.StatusCode, extractDetail(body))
}

// extractDetail pulls a message out of the server's error body, falling back to the raw text.
func extractDetail(body []byte) string {
	if d, ok := detailField(body); ok {
		return d
	}
	return strings.TrimSpace(string(body))
}

// detailField reads the message of a JSON object body.
// FastAPI uses {"detail": "..."} (or a list of validation errors); some handlers use {"error": "..."}.
func detailField(body []byte) (string, bool) {
	var parsed struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", false
	}
	if len(parsed.Detail) > 0 && string(parsed.Detail) != "null" {
		var s string
		if json.Unmarshal(parsed.Detail, &s) == nil {
			return s, true
		}
		return string(parsed.Detail), true
	}
	if parsed.Error != "" {
		return parsed.Error, true
	}
	return "", false
}
