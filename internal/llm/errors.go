// Package llm defines the error taxonomy shared by completion clients.
// Callers distinguish a missing credential (fatal, checked before any
// network attempt), a timed-out call, a connection-level failure, and a
// provider-side rejection.
package llm

import (
	"errors"
	"fmt"
)

// ErrAPIKeyMissing indicates no API credential is configured. It is
// returned before any network call is attempted.
var ErrAPIKeyMissing = errors.New("OPENROUTER_API_KEY missing")

// ErrTimeout indicates the provider did not answer within the configured
// bound.
var ErrTimeout = errors.New("request to AI service timed out")

// TransportError wraps a connection-level failure (DNS, refused connection,
// broken pipe).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("error connecting to AI service: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UpstreamError carries the provider's status code and body for a
// non-success response, or for a success response missing completion text.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("AI provider error: %d - %s", e.StatusCode, e.Body)
}
