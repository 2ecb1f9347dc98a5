package fetch

import (
	"errors"
	"fmt"
	"time"
)

// AuthError means the provider rejected our credentials (401/403). It is
// never retried; the caller should mark the provider inactive.
type AuthError struct {
	Provider   string
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication rejected (status=%d)", e.Provider, e.StatusCode)
}

// RateLimitError means the provider kept returning 429 after every allowed
// retry honored its Retry-After.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited (retry after %s)", e.Provider, e.RetryAfter)
}

// NetworkError covers timeouts, transport failures and 5xx responses that
// survived the retry budget.
type NetworkError struct {
	Provider string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network failure: %v", e.Provider, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError signals a structural mismatch in a provider's page or payload.
// Adapters log it and degrade to empty results instead of propagating.
type ParseError struct {
	Provider string
	Detail   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse failure: %s", e.Provider, e.Detail)
}

// IsAuth reports whether err is (or wraps) an AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
