package chi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/nyaybodh/nyaybodh/internal/domain/search/facet"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/result"
)

// ErrorResponseCode is the machine-readable code of an error response.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest       ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed ErrorResponseCode = "validation_failed"
	ErrorResponseCodeUnauthorized     ErrorResponseCode = "unauthorized"
	ErrorResponseCodeNotFound         ErrorResponseCode = "not_found"
	ErrorResponseCodeUpstreamError    ErrorResponseCode = "upstream_error"
	ErrorResponseCodeInvalidDocument  ErrorResponseCode = "invalid_document"
	ErrorResponseCodeInternalError    ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// SearchType is the {type} path parameter.
type SearchType string

// SearchParams are the query parameters of GET /search/{type}.
type SearchParams struct {
	Q       string    `form:"q" json:"q"`
	Date    *[]string `form:"date,omitempty" json:"date,omitempty"`
	Party   *[]string `form:"party,omitempty" json:"party,omitempty"`
	Judge   *[]string `form:"judge,omitempty" json:"judge,omitempty"`
	Refresh *bool     `form:"refresh,omitempty" json:"refresh,omitempty"`
}

// SearchResponse is the body of GET /search/{type}.
type SearchResponse struct {
	Status    string        `json:"status"`
	FromCache bool          `json:"from_cache"`
	Error     *string       `json:"error,omitempty"`
	Results   result.Set    `json:"results"`
	Visible   result.Set    `json:"visible"`
	Facets    facet.Options `json:"facets"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string            `json:"status"`
	Checks      map[string]string `json:"checks"`
	CacheDriver string            `json:"cache_driver"`
	CheckedAt   time.Time         `json:"checked_at"`
}

// ServerInterface lists the gateway operations.
type ServerInterface interface {
	// (GET /search/{type})
	Search(w http.ResponseWriter, r *http.Request, pType SearchType, params SearchParams)
	// (GET /cases/{uuid}/pdf)
	GetCasePDF(w http.ResponseWriter, r *http.Request, uuid string)
	// (GET /cases/{uuid}/recommendations)
	GetCaseRecommendations(w http.ResponseWriter, r *http.Request, uuid string)
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
}

// MiddlewareFunc wraps a single operation handler.
type MiddlewareFunc func(http.Handler) http.Handler

// ServerInterfaceWrapper binds request parameters and dispatches to the ServerInterface.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

// InvalidParamFormatError reports a parameter that could not be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// Search binds GET /search/{type}.
func (siw *ServerInterfaceWrapper) Search(w http.ResponseWriter, r *http.Request) {
	var err error

	var pType SearchType
	err = runtime.BindStyledParameterWithOptions("simple", "type", chi.URLParam(r, "type"), &pType,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "type", Err: err})
		return
	}

	var params SearchParams
	query := r.URL.Query()

	if err = runtime.BindQueryParameter("form", true, true, "q", query, &params.Q); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "q", Err: err})
		return
	}
	if err = runtime.BindQueryParameter("form", true, false, "date", query, &params.Date); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "date", Err: err})
		return
	}
	if err = runtime.BindQueryParameter("form", true, false, "party", query, &params.Party); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "party", Err: err})
		return
	}
	if err = runtime.BindQueryParameter("form", true, false, "judge", query, &params.Judge); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "judge", Err: err})
		return
	}
	if err = runtime.BindQueryParameter("form", true, false, "refresh", query, &params.Refresh); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "refresh", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.Search(w, r, pType, params)
	})
}

// GetCasePDF binds GET /cases/{uuid}/pdf.
func (siw *ServerInterfaceWrapper) GetCasePDF(w http.ResponseWriter, r *http.Request) {
	uuid, ok := siw.bindUUID(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetCasePDF(w, r, uuid)
	})
}

// GetCaseRecommendations binds GET /cases/{uuid}/recommendations.
func (siw *ServerInterfaceWrapper) GetCaseRecommendations(w http.ResponseWriter, r *http.Request) {
	uuid, ok := siw.bindUUID(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetCaseRecommendations(w, r, uuid)
	})
}

// HealthCheck binds GET /health.
func (siw *ServerInterfaceWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.HealthCheck)
}

// Metrics binds GET /metrics.
func (siw *ServerInterfaceWrapper) Metrics(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.Metrics)
}

func (siw *ServerInterfaceWrapper) bindUUID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var uuid string
	err := runtime.BindStyledParameterWithOptions("simple", "uuid", chi.URLParam(r, "uuid"), &uuid,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "uuid", Err: err})
		return "", false
	}
	return uuid, true
}

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, fn http.HandlerFunc) {
	handler := http.Handler(fn)
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerWithOptions mounts si on a chi router.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/search/{type}", wrapper.Search)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/cases/{uuid}/pdf", wrapper.GetCasePDF)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/cases/{uuid}/recommendations", wrapper.GetCaseRecommendations)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/health", wrapper.HealthCheck)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/metrics", wrapper.Metrics)
	})

	return r
}
