package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/nyaybodh/nyaybodh/internal/transport/api"
)

var (
	// ErrEmptyQuestion is returned for a blank question or chat message.
	ErrEmptyQuestion = errors.New("question is required")
	// ErrUnsupportedFile is returned for uploads that are not PDF documents.
	ErrUnsupportedFile = errors.New("only pdf documents can be uploaded")
)

// Service streams assistant answers and uploads documents.
type Service struct {
	docs     DocumentChat
	chat     Chatter
	uploader Uploader
	logger   *zap.Logger
}

// New creates an assistant service.
func New(docs DocumentChat, chat Chatter, uploader Uploader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{docs: docs, chat: chat, uploader: uploader, logger: logger}
}

// Ask prepares the case document and streams the answer into w.
// prepare can be false when the document was already prepared in this session.
func (s *Service) Ask(ctx context.Context, caseUUID, question string, prepare bool, w io.Writer) (int64, error) {
	caseUUID = strings.TrimSpace(caseUUID)
	if caseUUID == "" {
		return 0, errors.New("case uuid is required")
	}
	if strings.TrimSpace(question) == "" {
		return 0, ErrEmptyQuestion
	}
	if prepare {
		if err := s.docs.Prepare(ctx, caseUUID); err != nil {
			return 0, fmt.Errorf("prepare %s: %w", caseUUID, err)
		}
	}
	n, err := s.docs.Ask(ctx, caseUUID, question, w)
	if err != nil {
		return n, fmt.Errorf("ask %s: %w", caseUUID, err)
	}
	s.logger.Debug("answer streamed", zap.String("uuid", caseUUID), zap.Int64("bytes", n))
	return n, nil
}

// Chat streams a free-form answer into w.
func (s *Service) Chat(ctx context.Context, query string, w io.Writer) (int64, error) {
	if strings.TrimSpace(query) == "" {
		return 0, ErrEmptyQuestion
	}
	n, err := s.chat.Chat(ctx, query, w)
	if err != nil {
		return n, fmt.Errorf("chat: %w", err)
	}
	return n, nil
}

// Upload sends a PDF document.
func (s *Service) Upload(ctx context.Context, filename string, content io.Reader) (api.UploadResult, error) {
	name := filepath.Base(filename)
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return api.UploadResult{}, fmt.Errorf("%s: %w", name, ErrUnsupportedFile)
	}
	res, err := s.uploader.Upload(ctx, name, content)
	if err != nil {
		return api.UploadResult{}, fmt.Errorf("upload %s: %w", name, err)
	}
	s.logger.Info("document uploaded", zap.String("file", name), zap.String("url", res.FileURL))
	return res, nil
}
