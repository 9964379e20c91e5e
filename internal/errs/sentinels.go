// Package errs contains sentinel errors and error types used across layers
// for stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

// Common sentinels across client layers.
var (
	// ErrAuthIncomplete indicates a sign-in response missing the
	// token/client/uid triple. Never retried.
	ErrAuthIncomplete = errors.New("sign-in response missing token/client/uid")

	// ErrNotLoggedIn indicates an operation that requires a stored session.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrNoSession indicates session data has not been fetched yet.
	ErrNoSession = errors.New("session data not loaded")
)

// snippetLimit caps how much response body a terminal error carries.
const snippetLimit = 200

// StatusError is a non-success HTTP response, either non-retryable or with
// retries exhausted. Snippet holds at most the first 200 bytes of the body.
type StatusError struct {
	Status  int
	Snippet string
}

// NewStatusError builds a StatusError with a truncated body snippet.
func NewStatusError(status int, body []byte) *StatusError {
	snippet := string(body)
	if len(snippet) > snippetLimit {
		snippet = snippet[:snippetLimit]
	}
	return &StatusError{Status: status, Snippet: snippet}
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Snippet)
}

// Transient reports whether the status is worth retrying. The vendor API
// intermittently 404s and 5xxs under load; other statuses fail immediately.
func (e *StatusError) Transient() bool {
	return e.Status == 404 || e.Status >= 500
}
