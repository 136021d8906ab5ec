package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/nyaybodh/nyaybodh/internal/domain"
)

// Local stores files under a base directory.
type Local struct {
	basePath string
}

// NewLocal creates the base directory if needed.
func NewLocal(basePath string) (*Local, error) {
	if basePath == "" {
		return nil, errors.New("local storage path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &Local{basePath: basePath}, nil
}

// Upload writes data to a new file. A partial file is removed on error.
func (s *Local) Upload(_ context.Context, fileID uuid.UUID, filename string, data io.Reader) (string, error) {
	path := storagePath(fileID, filename)
	full := filepath.Join(s.basePath, path)

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, data); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("close file: %w", err)
	}
	return path, nil
}

// Download opens a stored file.
func (s *Local) Download(_ context.Context, storagePath string) (io.ReadCloser, error) {
	full, err := s.resolve(storagePath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file %s: %w", storagePath, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// Delete removes a stored file. Missing files are not an error.
func (s *Local) Delete(_ context.Context, storagePath string) error {
	full, err := s.resolve(storagePath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// resolve rejects paths that escape the base directory.
func (s *Local) resolve(storagePath string) (string, error) {
	full := filepath.Join(s.basePath, storagePath)
	rel, err := filepath.Rel(s.basePath, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("storage path %q outside base directory", storagePath)
	}
	return full, nil
}
