package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork signals a failed request to the remote API (transport error or non-2xx status).
	ErrNetwork = errors.New("network error")
	// ErrEmptyResult signals that the server explicitly reported no matches.
	ErrEmptyResult = errors.New("no matching results")
	// ErrMalformedResponse signals a payload whose shape could not be understood.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrInvalidQuery signals an empty or oversized search query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidSearchType signals a search type other than entity or semantic.
	ErrInvalidSearchType = errors.New("invalid search type")
	// ErrInvalidPDF signals a case file that is not a non-empty application/pdf body.
	ErrInvalidPDF = errors.New("invalid pdf")
	// ErrNotFound signals a missing remote resource.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized signals a rejected or expired token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotAuthenticated signals that no local session exists.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrUnknownFacet signals a filter value absent from the current facets.
	ErrUnknownFacet = errors.New("unknown facet value")
)

// NoResultsSentinel is the fragment of the server's `detail` message meaning "zero matches".
const NoResultsSentinel = "No matching results found"

// APIError is a non-2xx response from the remote API.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: http status %d", ErrNetwork.Error(), e.Status)
	}
	return fmt.Sprintf("%s: http status %d: %s", ErrNetwork.Error(), e.Status, e.Detail)
}

// Unwrap maps well-known statuses onto their sentinels so callers can use errors.Is.
func (e *APIError) Unwrap() []error {
	switch e.Status {
	case 401:
		return []error{ErrNetwork, ErrUnauthorized}
	case 404:
		return []error{ErrNetwork, ErrNotFound}
	default:
		return []error{ErrNetwork}
	}
}

// NewAPIError creates an APIError for a status code and server detail.
func NewAPIError(status int, detail string) error {
	return &APIError{Status: status, Detail: detail}
}
