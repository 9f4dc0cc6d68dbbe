package http

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound marks a confirmed absent resource. Probe reports it as
// (false, nil).
var ErrNotFound = errors.New("resource not found")

// TransportError is any probe or download failure other than a confirmed
// "not found": network failures and unexpected status codes.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

// Error returns the error message
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
	}
	if e.Err != nil {
		return fmt.Sprintf("request %s: %v", e.URL, e.Err)
	}
	return "transport error: " + e.URL
}

// Unwrap returns the underlying error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError returns true if err is or wraps a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
