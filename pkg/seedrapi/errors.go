package seedrapi

import "fmt"

// Error classification (spec §4.1, §7). HTTP 429 and 5xx responses and
// network failures are retried by the retryable transport built in
// transport.go; what remains after those retries, and every other failure,
// is returned to the caller classified as below.

type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("seedr: authentication failed (status %d)", e.StatusCode)
}

type RateLimitedError struct {
	StatusCode int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("seedr: rate limited (status %d)", e.StatusCode)
}

func (e *RateLimitedError) Transient() bool { return true }

type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("seedr: server error (status %d)", e.StatusCode)
}

func (e *ServerError) Transient() bool { return true }

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("seedr: not found: %s", e.Resource)
}

type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("seedr: transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Transient() bool { return true }

// ProtocolError covers an empty body on an otherwise-successful response,
// or a JSON body whose "result" field is present and false.
type ProtocolError struct {
	Detail string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("seedr: protocol error: %s", e.Detail)
}

// transientError is implemented by every error classification whose
// underlying failure the retryable transport retries with backoff.
type transientError interface {
	error
	Transient() bool
}

func isTransient(err error) bool {
	te, ok := err.(transientError)
	return ok && te.Transient()
}

// classifyStatus maps an HTTP status code to the taxonomy in spec §4.1.
// Returns nil for 2xx.
func classifyStatus(statusCode int, resource string) error {
	switch {
	case statusCode == 401 || statusCode == 403:
		return &AuthError{StatusCode: statusCode}
	case statusCode == 429:
		return &RateLimitedError{StatusCode: statusCode}
	case statusCode == 404:
		return &NotFoundError{Resource: resource}
	case statusCode >= 500:
		return &ServerError{StatusCode: statusCode}
	case statusCode >= 200 && statusCode < 300:
		return nil
	default:
		return &ProtocolError{Detail: fmt.Sprintf("unexpected status %d", statusCode)}
	}
}
