package crossref

import (
	"errors"
	"fmt"
)

// ErrProviderUnavailable is wrapped by every error the client returns for a
// lookup that did not produce a usable response.
var ErrProviderUnavailable = errors.New("crossref unavailable")

// Common errors returned by the Crossref client. Each is returned wrapped
// together with ErrProviderUnavailable.
var (
	// ErrNotFound indicates Crossref has no work for the DOI.
	ErrNotFound = errors.New("not found in Crossref")

	// ErrRateLimited indicates the rate limit has been exceeded.
	ErrRateLimited = errors.New("Crossref rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue or timeout.
	ErrNetworkError = errors.New("network error communicating with Crossref")

	// ErrInvalidResponse indicates a response body that is not the expected JSON.
	ErrInvalidResponse = errors.New("invalid response from Crossref")
)

// APIError represents an HTTP error status from the Crossref REST API.
type APIError struct {
	StatusCode int
	Message    string
	DOI        string
}

func (e *APIError) Error() string {
	if e.DOI != "" {
		return fmt.Sprintf("Crossref API error (status %d): %s (doi: %s)", e.StatusCode, e.Message, e.DOI)
	}
	return fmt.Sprintf("Crossref API error (status %d): %s", e.StatusCode, e.Message)
}

// unavailable wraps cause so that it matches both ErrProviderUnavailable
// and cause.
func unavailable(doi string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrProviderUnavailable, doi, cause)
}

// IsNotFound returns true if the error indicates the work was not found.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}

// IsUnavailable returns true for any lookup failure from this client.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrProviderUnavailable)
}
