// Package docgen fills legal document templates through the remote generator.
package docgen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	domdoc "github.com/nyaybodh/nyaybodh/internal/domain/docgen"
)

// ErrStorageDisabled is returned by Save when no file store is configured.
var ErrStorageDisabled = errors.New("file storage is not configured")

// Document is a generated PDF.
type Document struct {
	Kind     domdoc.Kind
	FileName string
	Data     []byte
}

// Saved is a generated document and where it was stored.
type Saved struct {
	Document
	Path string
}

// Service validates answers and asks the generator for the document.
type Service struct {
	gen       Generator
	store     FileStore
	endpoints map[domdoc.Kind]string
	newID     func() uuid.UUID
	generated *prometheus.CounterVec
	logger    *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithEndpoints overrides template routes by kind name. Unknown kinds and blank routes are ignored.
func WithEndpoints(routes map[string]string) Option {
	return func(s *Service) {
		for name, route := range routes {
			t, err := domdoc.Lookup(name)
			if err != nil || strings.TrimSpace(route) == "" {
				continue
			}
			s.endpoints[t.Kind] = strings.TrimSpace(route)
		}
	}
}

// WithMetrics counts generations with labels "kind" and "outcome".
func WithMetrics(generated *prometheus.CounterVec) Option {
	return func(s *Service) { s.generated = generated }
}

// New creates a document service. store may be nil.
func New(gen Generator, store FileStore, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		gen:       gen,
		store:     store,
		endpoints: make(map[domdoc.Kind]string),
		newID:     uuid.New,
		logger:    logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Templates lists every template with its effective route.
func (s *Service) Templates() []domdoc.Template {
	kinds := domdoc.Kinds()
	out := make([]domdoc.Template, 0, len(kinds))
	for _, k := range kinds {
		t, _ := s.Template(string(k))
		out = append(out, t)
	}
	return out
}

// Template looks up a template by kind name.
func (s *Service) Template(kind string) (domdoc.Template, error) {
	t, err := domdoc.Lookup(kind)
	if err != nil {
		return domdoc.Template{}, err //nolint:wrapcheck // already names the kind
	}
	if route, ok := s.endpoints[t.Kind]; ok {
		t.Endpoint = route
	}
	return t, nil
}

// Generate validates answers for kind and returns the rendered PDF.
// Validation failures never reach the generator.
func (s *Service) Generate(ctx context.Context, kind string, answers map[string]string) (Document, error) {
	t, err := s.Template(kind)
	if err != nil {
		return Document{}, err
	}
	form, err := t.Build(answers)
	if err != nil {
		s.inc(t.Kind, "invalid")
		return Document{}, fmt.Errorf("%s: %w", t.Kind, err)
	}

	data, err := s.gen.Generate(ctx, form)
	if err != nil {
		s.inc(t.Kind, "error")
		return Document{}, fmt.Errorf("generate %s: %w", t.Kind, err)
	}
	s.inc(t.Kind, "ok")
	s.logger.Debug("document generated",
		zap.String("kind", string(t.Kind)),
		zap.Int("bytes", len(data)),
	)
	return Document{Kind: t.Kind, FileName: form.FileName(), Data: data}, nil
}

// Save generates a document and writes it to the file store under a fresh id.
func (s *Service) Save(ctx context.Context, kind string, answers map[string]string) (Saved, error) {
	if s.store == nil {
		return Saved{}, ErrStorageDisabled
	}
	doc, err := s.Generate(ctx, kind, answers)
	if err != nil {
		return Saved{}, err
	}
	path, err := s.store.Upload(ctx, s.newID(), doc.FileName, bytes.NewReader(doc.Data))
	if err != nil {
		return Saved{}, fmt.Errorf("store %s: %w", doc.FileName, err)
	}
	s.logger.Info("document stored",
		zap.String("kind", string(doc.Kind)),
		zap.String("path", path),
		zap.Int("bytes", len(doc.Data)),
	)
	return Saved{Document: doc, Path: path}, nil
}

func (s *Service) inc(kind domdoc.Kind, outcome string) {
	if s.generated != nil {
		s.generated.WithLabelValues(string(kind), outcome).Inc()
	}
}
