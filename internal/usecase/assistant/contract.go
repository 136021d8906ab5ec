package assistant

import (
	"context"
	"io"

	"github.com/nyaybodh/nyaybodh/internal/transport/api"
)

// DocumentChat answers questions about a single case document.
type DocumentChat interface {
	Prepare(ctx context.Context, caseUUID string) error
	Ask(ctx context.Context, caseUUID, question string, w io.Writer) (int64, error)
}

// Chatter answers free-form legal questions.
type Chatter interface {
	Chat(ctx context.Context, query string, w io.Writer) (int64, error)
}

// Uploader sends user documents to the server.
type Uploader interface {
	Upload(ctx context.Context, filename string, content io.Reader) (api.UploadResult, error)
}
