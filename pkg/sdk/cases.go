package nyaybodh

import (
	"context"
	"log/slog"
	"time"

	domcase "github.com/nyaybodh/nyaybodh/internal/domain/casefile"
)

// Case is a case record as returned by the recommendations endpoint.
type Case = domcase.Case

// Recommendations is a case and the cases most similar to it.
type Recommendations = domcase.Recommendations

// CaseService fetches case documents and recommendations.
type CaseService struct {
	svc caseUseCase
	obs *observer
}

// PDF downloads the case document. The body is verified to be a PDF.
func (s *CaseService) PDF(ctx context.Context, caseUUID string) (_ []byte, err error) {
	start := time.Now()
	defer func() { s.obs.observe("case.pdf", start, err, slog.String("uuid", caseUUID)) }()

	pdf, err := s.svc.PDF(ctx, caseUUID)
	if err != nil {
		return nil, err //nolint:wrapcheck // use case already adds context
	}
	return pdf.Data, nil
}

// Recommend returns the cases most similar to caseUUID.
func (s *CaseService) Recommend(ctx context.Context, caseUUID string) (_ Recommendations, err error) {
	start := time.Now()
	defer func() { s.obs.observe("case.recommend", start, err, slog.String("uuid", caseUUID)) }()

	return s.svc.Recommend(ctx, caseUUID) //nolint:wrapcheck // use case already adds context
}
