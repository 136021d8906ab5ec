package api

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"

	"github.com/nyaybodh/nyaybodh/internal/domain"
	"github.com/nyaybodh/nyaybodh/internal/domain/casefile"
)

// GetFile downloads the PDF of a case. A non-PDF content type, an empty body
// or a body over the size cap is reported as domain.ErrInvalidPDF.
func (c *Client) GetFile(ctx context.Context, caseUUID string) (casefile.PDF, error) {
	r := &request{
		endpoint: "get_file",
		method:   http.MethodGet,
		url:      c.baseURL + "/get-file/" + url.PathEscape(caseUUID),
		accept:   "application/pdf",
	}
	resp, err := c.send(ctx, r)
	if err != nil {
		return casefile.PDF{}, err
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	data, err := c.readPDF(resp)
	if err != nil {
		return casefile.PDF{}, err
	}
	return casefile.PDF{UUID: caseUUID, Data: data}, nil
}

// readPDF checks status, content type and size of a PDF response.
func (c *Client) readPDF(resp *http.Response) ([]byte, error) {
	if !isSuccess(resp.StatusCode) {
		return nil, errorFromResponse(resp)
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/pdf" {
		return nil, fmt.Errorf("content type %q: %w", resp.Header.Get("Content-Type"), domain.ErrInvalidPDF)
	}

	data, tooLarge, err := readLimited(resp.Body, c.maxPDF)
	switch {
	case err != nil:
		return nil, fmt.Errorf("%w: read pdf: %w", domain.ErrNetwork, err)
	case tooLarge:
		return nil, fmt.Errorf("pdf larger than %d bytes: %w", c.maxPDF, domain.ErrInvalidPDF)
	case len(data) == 0:
		return nil, fmt.Errorf("empty body: %w", domain.ErrInvalidPDF)
	}
	return data, nil
}

// Recommend returns the case and the cases most similar to it.
func (c *Client) Recommend(ctx context.Context, caseUUID string) (casefile.Recommendations, error) {
	r, err := jsonRequest("recommend", http.MethodGet, c.baseURL+"/recommend/"+url.PathEscape(caseUUID), nil)
	if err != nil {
		return casefile.Recommendations{}, err
	}
	var out casefile.Recommendations
	if err := c.do(ctx, r, &out); err != nil {
		return casefile.Recommendations{}, err
	}
	return out, nil
}

// Health checks that the remote API answers.
func (c *Client) Health(ctx context.Context) error {
	r, err := jsonRequest("health", http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	return c.do(ctx, r, nil)
}
