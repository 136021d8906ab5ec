package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/nyaybodh/nyaybodh/internal/domain/docgen"
)

// Generate posts a validated form to its template endpoint on the document
// generator and returns the rendered PDF. Responses get the same checks as GetFile.
func (c *Client) Generate(ctx context.Context, form docgen.Form) ([]byte, error) {
	endpoint := "/" + strings.TrimLeft(form.Template.Endpoint, "/")
	r, err := jsonRequest("docgen_"+string(form.Template.Kind), http.MethodPost, c.docgenBaseURL+endpoint, form.Body)
	if err != nil {
		return nil, err
	}
	r.accept = "application/pdf"

	resp, err := c.send(ctx, r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	return c.readPDF(resp)
}
