package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/nyaybodh/nyaybodh/internal/domain"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/mode"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/result"
)

type searchBody struct {
	Query string `json:"query"`
}

// Search runs a remote search.
//
// The server's "no matching results" answer, whatever its status code, is returned as an
// empty set together with an error wrapping domain.ErrEmptyResult. A 2xx payload of an
// unexpected shape is coerced to an empty set without error. Every other failure wraps
// domain.ErrNetwork.
func (c *Client) Search(ctx context.Context, t mode.Type, query string) (result.Set, error) {
	if !t.IsValid() {
		return result.Set{}, fmt.Errorf("search type %q: %w", t, domain.ErrInvalidSearchType)
	}

	r, err := jsonRequest("search_"+string(t), http.MethodPost, c.baseURL+"/search/"+string(t), searchBody{Query: query})
	if err != nil {
		return result.Empty(t), err
	}
	resp, err := c.send(ctx, r)
	if err != nil {
		return result.Empty(t), err
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	body, tooLarge, err := readLimited(resp.Body, c.maxSearch)
	if err != nil {
		return result.Empty(t), fmt.Errorf("%w: read search response: %w", domain.ErrNetwork, err)
	}
	if tooLarge {
		return result.Empty(t), fmt.Errorf("search %s: payload over %d bytes: %w", t, c.maxSearch, domain.ErrMalformedResponse)
	}

	if detail, ok := detailField(body); ok && strings.Contains(detail, domain.NoResultsSentinel) {
		return result.Empty(t), fmt.Errorf("search %s: %w", t, domain.ErrEmptyResult)
	}
	if !isSuccess(resp.StatusCode) {
		return result.Empty(t), domain.NewAPIError(resp.StatusCode, extractDetail(body))
	}

	set, err := ParseSearchPayload(t, body)
	if err != nil {
		c.logger.Warn("Malformed search response, treating as empty",
			zap.String("type", string(t)),
			zap.Error(err),
		)
		return result.Empty(t), nil
	}
	return set, nil
}

// ParseSearchPayload normalizes a 2xx search body into a result set.
// Semantic search answers {"SemanticResultData": [...]}; entity search answers a bare array.
// Both shapes are accepted for either type.
func ParseSearchPayload(t mode.Type, body []byte) (result.Set, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return result.Set{}, fmt.Errorf("empty body: %w", domain.ErrMalformedResponse)
	}

	var items json.RawMessage
	switch body[0] {
	case '[':
		items = body
	case '{':
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return result.Set{}, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
		}
		v, ok := wrapped[t.ResultKey()]
		if !ok {
			return result.Set{}, fmt.Errorf("missing %s: %w", t.ResultKey(), domain.ErrMalformedResponse)
		}
		items = v
	default:
		return result.Set{}, fmt.Errorf("unexpected payload: %w", domain.ErrMalformedResponse)
	}

	if bytes.Equal(bytes.TrimSpace(items), []byte("null")) {
		return result.Empty(t), nil
	}

	if t == mode.Semantic {
		var hits []result.Semantic
		if err := json.Unmarshal(items, &hits); err != nil {
			return result.Set{}, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
		}
		return result.NewSemanticSet(hits), nil
	}
	var hits []result.Entity
	if err := json.Unmarshal(items, &hits); err != nil {
		return result.Set{}, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}
	return result.NewEntitySet(hits), nil
}
