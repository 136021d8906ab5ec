package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nyaybodh/nyaybodh/internal/domain"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/filter"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/mode"
	casefileuc "github.com/nyaybodh/nyaybodh/internal/usecase/casefile"
	healthuc "github.com/nyaybodh/nyaybodh/internal/usecase/health"
	searchuc "github.com/nyaybodh/nyaybodh/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements ServerInterface on top of the use cases.
type Server struct {
	search        *searchuc.Service
	cases         *casefileuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP gateway server.
func NewServer(
	search *searchuc.Service,
	cases *casefileuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search: search,
		cases:  cases,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidSearchType, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(casefileuc.ErrInvalidCaseID, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodeNotFound),
		sentinelHandler(domain.ErrUnauthorized, http.StatusBadGateway, ErrorResponseCodeUnauthorized),
		sentinelHandler(domain.ErrInvalidPDF, http.StatusBadGateway, ErrorResponseCodeInvalidDocument),
		sentinelHandler(domain.ErrMalformedResponse, http.StatusBadGateway, ErrorResponseCodeUpstreamError),
		sentinelHandler(domain.ErrNetwork, http.StatusBadGateway, ErrorResponseCodeUpstreamError),
	}
	return s
}

// Search handles GET /search/{type}.
// Every request gets a fresh page; the results cache is shared.
func (s *Server) Search(w http.ResponseWriter, r *http.Request, pType SearchType, params SearchParams) {
	t, err := mode.Parse(string(pType))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	var opts []searchuc.SubmitOption
	if params.Refresh != nil && *params.Refresh {
		opts = append(opts, searchuc.Refresh())
	}

	page := s.search.NewPage()
	if _, err := page.Submit(r.Context(), params.Q, t, opts...); err != nil {
		s.handleDomainError(w, err)
		return
	}
	page.SetSelection(filter.NewSelection(deref(params.Date), deref(params.Party), deref(params.Judge)))

	v := page.View()
	resp := SearchResponse{
		Status:    string(v.State.Status),
		FromCache: v.State.FromCache,
		Results:   v.State.Results,
		Visible:   v.Visible,
		Facets:    v.Facets,
	}
	status := http.StatusOK
	if v.State.HasError() {
		msg := v.State.Message
		resp.Error = &msg
		status = http.StatusBadGateway
	}
	writeJSON(w, status, resp)
}

// GetCasePDF handles GET /cases/{uuid}/pdf.
func (s *Server) GetCasePDF(w http.ResponseWriter, r *http.Request, uuid string) {
	pdf, err := s.cases.PDF(r.Context(), uuid)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf.Data)))
	w.Header().Set("Content-Disposition", "inline; filename="+strconv.Quote(pdf.FileName()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf.Data)
}

// GetCaseRecommendations handles GET /cases/{uuid}/recommendations.
func (s *Server) GetCaseRecommendations(w http.ResponseWriter, r *http.Request, uuid string) {
	recs, err := s.cases.Recommend(r.Context(), uuid)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:      string(report.Status),
		Checks:      checks,
		CacheDriver: report.CacheDriver,
		CheckedAt:   report.CheckedAt,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func deref(v *[]string) []string {
	if v == nil {
		return nil
	}
	return *v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrInvalidSearchType,
		casefileuc.ErrInvalidCaseID,
		domain.ErrNotFound,
		domain.ErrUnauthorized,
		domain.ErrInvalidPDF,
		domain.ErrMalformedResponse,
		domain.ErrNetwork,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
