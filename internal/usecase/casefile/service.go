package casefile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	domcase "github.com/nyaybodh/nyaybodh/internal/domain/casefile"
	"github.com/nyaybodh/nyaybodh/internal/storage"
)

var (
	// ErrStorageDisabled is returned by Save when no file store is configured.
	ErrStorageDisabled = errors.New("file storage is not configured")
	// ErrInvalidCaseID is returned for a blank case uuid.
	ErrInvalidCaseID = errors.New("case uuid is required")
)

// Saved is a downloaded case document and where it was stored.
type Saved struct {
	PDF  domcase.PDF
	Path string
}

// Service fetches case documents and recommendations.
type Service struct {
	files  FileFetcher
	recs   Recommender
	store  FileStore
	logger *zap.Logger
}

// New creates a case file service. store may be nil.
func New(files FileFetcher, recs Recommender, store FileStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{files: files, recs: recs, store: store, logger: logger}
}

// PDF downloads a case document.
func (s *Service) PDF(ctx context.Context, caseUUID string) (domcase.PDF, error) {
	id, err := normalize(caseUUID)
	if err != nil {
		return domcase.PDF{}, err
	}
	pdf, err := s.files.GetFile(ctx, id)
	if err != nil {
		return domcase.PDF{}, fmt.Errorf("get case file %s: %w", id, err)
	}
	return pdf, nil
}

// Save downloads a case document and writes it to the file store.
func (s *Service) Save(ctx context.Context, caseUUID string) (Saved, error) {
	if s.store == nil {
		return Saved{}, ErrStorageDisabled
	}
	pdf, err := s.PDF(ctx, caseUUID)
	if err != nil {
		return Saved{}, err
	}
	path, err := s.store.Upload(ctx, storage.FileID(pdf.UUID), pdf.FileName(), bytes.NewReader(pdf.Data))
	if err != nil {
		return Saved{}, fmt.Errorf("store case file %s: %w", pdf.UUID, err)
	}
	s.logger.Info("case file stored",
		zap.String("uuid", pdf.UUID),
		zap.String("path", path),
		zap.Int("bytes", len(pdf.Data)),
	)
	return Saved{PDF: pdf, Path: path}, nil
}

// Recommend returns the cases most similar to caseUUID.
func (s *Service) Recommend(ctx context.Context, caseUUID string) (domcase.Recommendations, error) {
	id, err := normalize(caseUUID)
	if err != nil {
		return domcase.Recommendations{}, err
	}
	recs, err := s.recs.Recommend(ctx, id)
	if err != nil {
		return domcase.Recommendations{}, fmt.Errorf("recommend %s: %w", id, err)
	}
	return recs, nil
}

func normalize(caseUUID string) (string, error) {
	id := strings.TrimSpace(caseUUID)
	if id == "" {
		return "", ErrInvalidCaseID
	}
	return id, nil
}
