package casefile

import (
	"context"
	"io"

	"github.com/google/uuid"

	domcase "github.com/nyaybodh/nyaybodh/internal/domain/casefile"
)

// FileFetcher downloads validated case PDFs.
type FileFetcher interface {
	GetFile(ctx context.Context, caseUUID string) (domcase.PDF, error)
}

// Recommender finds cases similar to a given one.
type Recommender interface {
	Recommend(ctx context.Context, caseUUID string) (domcase.Recommendations, error)
}

// FileStore persists downloaded files.
type FileStore interface {
	Upload(ctx context.Context, fileID uuid.UUID, filename string, data io.Reader) (string, error)
}
