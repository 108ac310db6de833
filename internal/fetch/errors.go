package fetch

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by provider clients. Batch callers isolate
// per-identifier failures with these; only systemic failures abort a run.
var (
	// ErrNotFound indicates the identifier is unknown upstream.
	ErrNotFound = errors.New("identifier not found upstream")

	// ErrTransient indicates a network failure, timeout, or upstream
	// overload that persisted through the retry budget.
	ErrTransient = errors.New("transient network error")

	// ErrParse indicates the upstream response could not be parsed into a
	// bibliographic record.
	ErrParse = errors.New("malformed upstream response")

	// ErrUnsupportedKind indicates no provider is registered for the
	// identifier kind.
	ErrUnsupportedKind = errors.New("unsupported identifier kind")
)

// APIError carries upstream HTTP detail for diagnostics.
type APIError struct {
	StatusCode int
	Identifier string
	Message    string
}

func (e *APIError) Error() string {
	if e.Identifier != "" {
		return fmt.Sprintf("provider error (status %d): %s (%s)", e.StatusCode, e.Message, e.Identifier)
	}
	return fmt.Sprintf("provider error (status %d): %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err means the identifier does not resolve.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

// IsTransient reports whether err is worth retrying or reporting as skipped
// rather than failed.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
