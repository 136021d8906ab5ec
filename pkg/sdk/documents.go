package nyaybodh

import (
	"context"
	"log/slog"
	"time"

	domdoc "github.com/nyaybodh/nyaybodh/internal/domain/docgen"
)

// DocumentKind names a legal document template, e.g. "will-deed".
type DocumentKind = domdoc.Kind

// DocumentTemplate describes one template and the answers it needs.
type DocumentTemplate = domdoc.Template

// FieldError lists missing and unknown answers. Use errors.As to inspect it.
type FieldError = domdoc.FieldError

// Document is a generated PDF and the file name it should be saved under.
type Document struct {
	Kind     DocumentKind
	FileName string
	Data     []byte
}

// DocumentService fills legal document templates through the generator service.
type DocumentService struct {
	svc docUseCase
	obs *observer
}

// Documents returns the document generation service.
func (c *Client) Documents() *DocumentService {
	return &DocumentService{svc: c.docSvc, obs: c.obs}
}

// Templates lists the available templates ordered by kind.
func (s *DocumentService) Templates() []DocumentTemplate {
	return s.svc.Templates()
}

// Generate validates answers for kind and returns the rendered PDF.
// Nested answers use dotted keys such as "executors.0.name".
func (s *DocumentService) Generate(ctx context.Context, kind string, answers map[string]string) (_ Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("docgen.generate", start, err, slog.String("kind", kind)) }()

	doc, err := s.svc.Generate(ctx, kind, answers)
	if err != nil {
		return Document{}, err //nolint:wrapcheck // use case already adds context
	}
	return Document{Kind: doc.Kind, FileName: doc.FileName, Data: doc.Data}, nil
}
