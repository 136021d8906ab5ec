// Package storage keeps downloaded case files on local disk or in S3.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage stores and retrieves files by storage path.
type Storage interface {
	// Upload stores data and returns its storage path.
	Upload(ctx context.Context, fileID uuid.UUID, filename string, data io.Reader) (string, error)
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)
	Delete(ctx context.Context, storagePath string) error
}

// Type is the storage backend.
type Type string

// Storage backends.
const (
	TypeLocal Type = "local"
	TypeS3    Type = "s3"
)

// Config selects and configures a backend.
type Config struct {
	Type         Type
	LocalPath    string
	S3Bucket     string
	S3Region     string
	AWSAccessKey string
	AWSSecretKey string
}

// New creates the backend named by cfg.Type.
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Type {
	case TypeLocal:
		return NewLocal(cfg.LocalPath)
	case TypeS3:
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %q", cfg.Type)
	}
}

// FileID derives a stable file ID from a case UUID.
// Identifiers that are not UUIDs are hashed into one.
func FileID(caseUUID string) uuid.UUID {
	if id, err := uuid.Parse(caseUUID); err == nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("nyaybodh:case:"+caseUUID))
}

// storagePath builds "<2 hex>/<uuid>_<sanitized name><ext>".
func storagePath(fileID uuid.UUID, filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filepath.Base(filename), ext)
	base = strings.NewReplacer(" ", "_", "/", "_", "\\", "_").Replace(base)

	id := fileID.String()
	return fmt.Sprintf("%s/%s_%s%s", id[:2], id, base, ext)
}

func contentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
