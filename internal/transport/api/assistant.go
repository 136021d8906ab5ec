package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
)

type askBody struct {
	UUID     string `json:"uuid"`
	Question string `json:"question"`
}

type chatBody struct {
	Query string `json:"query"`
}

// UploadResult is the server's answer to a file upload.
type UploadResult struct {
	FileURL  string `json:"fileUrl,omitempty"`
	FileName string `json:"filename,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Prepare asks the server to index a case document for questions.
func (c *Client) Prepare(ctx context.Context, caseUUID string) error {
	r, err := jsonRequest("chat_prepare", http.MethodPost, c.baseURL+"/chat/get-ready/"+url.PathEscape(caseUUID), nil)
	if err != nil {
		return err
	}
	return c.do(ctx, r, nil)
}

// Ask streams the answer to a question about one case into w.
func (c *Client) Ask(ctx context.Context, caseUUID, question string, w io.Writer) (int64, error) {
	r, err := jsonRequest("ask", http.MethodPost, c.baseURL+"/ask/", askBody{UUID: caseUUID, Question: question})
	if err != nil {
		return 0, err
	}
	r.accept = "text/plain"
	return c.stream(ctx, r, w)
}

// Chat streams a free-form legal assistant answer into w.
func (c *Client) Chat(ctx context.Context, query string, w io.Writer) (int64, error) {
	r, err := jsonRequest("chat", http.MethodPost, c.baseURL+"/chat", chatBody{Query: query})
	if err != nil {
		return 0, err
	}
	r.accept = "text/plain"
	return c.stream(ctx, r, w)
}

// Upload sends a document as the multipart field "file".
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) (UploadResult, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", filepath.Base(filename))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, content); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	r := &request{
		endpoint:    "upload",
		method:      http.MethodPost,
		url:         c.baseURL + "/upload",
		body:        pr,
		contentType: mw.FormDataContentType(),
		accept:      "application/json",
	}
	var out UploadResult
	if err := c.do(ctx, r, &out); err != nil {
		_ = pr.CloseWithError(err)
		return UploadResult{}, fmt.Errorf("upload %s: %w", filepath.Base(filename), err)
	}
	return out, nil
}
