package docgen

import (
	"context"
	"io"

	"github.com/google/uuid"

	domdoc "github.com/nyaybodh/nyaybodh/internal/domain/docgen"
)

// Generator renders a validated form into a PDF.
type Generator interface {
	Generate(ctx context.Context, form domdoc.Form) ([]byte, error)
}

// FileStore persists generated documents.
type FileStore interface {
	Upload(ctx context.Context, fileID uuid.UUID, filename string, data io.Reader) (string, error)
}
