package nyaybodh

import (
	"errors"

	"github.com/nyaybodh/nyaybodh/internal/domain"
	domdoc "github.com/nyaybodh/nyaybodh/internal/domain/docgen"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNetwork           = domain.ErrNetwork
	ErrInvalidQuery      = domain.ErrInvalidQuery
	ErrInvalidSearchType = domain.ErrInvalidSearchType
	ErrInvalidPDF        = domain.ErrInvalidPDF
	ErrNotFound          = domain.ErrNotFound
	ErrUnauthorized      = domain.ErrUnauthorized
	ErrUnknownFacet      = domain.ErrUnknownFacet
	ErrUnknownKind       = domdoc.ErrUnknownKind
	ErrMissingField      = domdoc.ErrMissingField
	ErrUnknownField      = domdoc.ErrUnknownField
)

// errUnhealthy marks a failed health check in SDK metrics and logs.
var errUnhealthy = errors.New("nyaybodh: remote api unreachable")
